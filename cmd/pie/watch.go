package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"pie"
	"pie/internal/cliutil"
	"pie/internal/watch"

	"github.com/spf13/cobra"
)

func newWatchCommand() *cobra.Command {
	var inPath, outPath, stamperName string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the demo chain every time --in changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inPath == "" || outPath == "" {
				return cliutil.NewInvocationError(cliutil.ExitInvalidInvocation, "pie watch: --in and --out are required")
			}
			write, err := buildWriteTask(inPath, outPath, stamperName)
			if err != nil {
				return err
			}

			p := pie.New()
			sess := p.NewSession()
			if _, err := requireAndReport(sess, write); err != nil {
				sess.Close()
				return cliutil.NewInvocationError(cliutil.ExitBuildFailure, "pie watch: initial build: %v", err)
			}
			sess.Close()
			logger.Info("initial build complete", pathField("out", outPath))

			w, err := watch.New([]string{filepath.Dir(inPath)}, watch.DefaultDebounce)
			if err != nil {
				return fmt.Errorf("pie watch: start watcher: %w", err)
			}
			defer w.Close()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

			for {
				select {
				case <-sig:
					logger.Info("watch stopped")
					return nil
				case err := <-w.Errors():
					logger.Warn("watch error", errField(err))
				case batch := <-w.Changes():
					logger.Info("change detected", stringsField("paths", batch))
					rebuildSess := p.NewSession()
					if err := rebuildSess.UpdateAffectedBy(batch); err != nil {
						logger.Error("update affected failed", errField(err))
						rebuildSess.Close()
						continue
					}
					if _, err := requireAndReport(rebuildSess, write); err != nil {
						logger.Error("rebuild failed", errField(err))
					} else {
						logger.Info("rebuild complete", pathField("out", outPath))
					}
					rebuildSess.Close()
				}
			}
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "input file to read")
	cmd.Flags().StringVar(&outPath, "out", "", "output file to write")
	cmd.Flags().StringVar(&stamperName, "stamper", "modified", "file stamper: modified, hash, exists, modified-recursive, hash-recursive")
	return cmd
}

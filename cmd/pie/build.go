package main

import (
	"fmt"

	"pie"
	"pie/internal/cliutil"
	"pie/internal/persist"

	"github.com/spf13/cobra"
)

func newBuildCommand() *cobra.Command {
	var inPath, outPath, stamperName, graphPath string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Run the read -> lowercase -> write demo chain once",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inPath == "" || outPath == "" {
				return cliutil.NewInvocationError(cliutil.ExitInvalidInvocation, "pie build: --in and --out are required")
			}
			write, err := buildWriteTask(inPath, outPath, stamperName)
			if err != nil {
				return err
			}

			p := pie.New()
			sess := p.NewSession()
			res, err := requireAndReport(sess, write)
			sess.Close()
			if err != nil {
				logger.Error("build failed", errField(err))
				return cliutil.NewInvocationError(cliutil.ExitBuildFailure, "pie build: %v", err)
			}
			logger.Info("build complete", pathField("out", outPath))
			fmt.Fprintln(cmd.OutOrStdout(), res.Value)

			if graphPath != "" {
				if err := persist.SaveGraph(graphPath, p.Store()); err != nil {
					return fmt.Errorf("pie build: save graph: %w", err)
				}
				logger.Info("graph saved", pathField("graph", graphPath))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inPath, "in", "", "input file to read")
	cmd.Flags().StringVar(&outPath, "out", "", "output file to write")
	cmd.Flags().StringVar(&stamperName, "stamper", "modified", "file stamper: modified, hash, exists, modified-recursive, hash-recursive")
	cmd.Flags().StringVar(&graphPath, "graph", "", "optional path to save the resulting graph as YAML")
	return cmd
}

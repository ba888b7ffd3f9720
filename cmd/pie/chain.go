package main

import (
	"fmt"

	"pie"
	"pie/internal/cliutil"
	"pie/internal/stamp"
	"pie/internal/tasks"
)

// buildWriteTask wires the read -> lowercase -> write DemoTask chain this
// CLI demonstrates: read inPath, lowercase its contents, write the result
// to outPath.
func buildWriteTask(inPath, outPath, stamperName string) (tasks.DemoTask, error) {
	stamper, err := parseStamperName(stamperName)
	if err != nil {
		return tasks.DemoTask{}, err
	}
	read := tasks.ReadFileTask(inPath, stamper)
	lower := tasks.ToLowerTask(read)
	return tasks.WriteFileTask(lower, outPath, stamper), nil
}

func parseStamperName(name string) (stamp.FileStamper, error) {
	switch name {
	case "", "modified":
		return stamp.Modified(), nil
	case "hash":
		return stamp.Hash(), nil
	case "exists":
		return stamp.Exists(), nil
	case "modified-recursive":
		return stamp.ModifiedRecursive(), nil
	case "hash-recursive":
		return stamp.HashRecursive(), nil
	default:
		return stamp.FileStamper{}, cliutil.NewInvocationError(cliutil.ExitInvalidInvocation,
			"pie: unknown --stamper %q (want one of modified, hash, exists, modified-recursive, hash-recursive)", name)
	}
}

func requireAndReport(sess *pie.Session, task tasks.DemoTask) (tasks.Result, error) {
	out, err := sess.Require(task)
	if err != nil {
		return tasks.Result{}, fmt.Errorf("require task: %w", err)
	}
	res, ok := out.(tasks.Result)
	if !ok {
		return tasks.Result{}, fmt.Errorf("require task: unexpected output type %T", out)
	}
	if res.Err != "" {
		return res, fmt.Errorf("task failed: %s", res.Err)
	}
	return res, nil
}

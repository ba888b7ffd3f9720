package engine

import (
	"pie/internal/dependency"
	"pie/internal/stamp"
	"pie/internal/store"
	"pie/internal/taskapi"
)

// shared holds the responsibilities common to both strategies (§4.4): the
// execution stack, and the three dependency-recording operations with
// their soundness checks. TopDownContext and BottomUpContext each embed
// a *shared and supply their own makeConsistent for requireTask to call.
type shared struct {
	session *SessionState
	stack   []store.NodeID
}

func (sh *shared) current() (store.NodeID, bool) {
	if len(sh.stack) == 0 {
		return 0, false
	}
	return sh.stack[len(sh.stack)-1], true
}

// execute resets id, pushes it onto the execution stack, runs its task
// body against ctx, and records the fresh output. It is identical for
// both strategies: what differs is only what decides a task needs this
// call (TopDownContext.makeConsistent's edge walk vs. BottomUpContext's
// scheduled-queue drain).
func (sh *shared) execute(id store.NodeID, ctx taskapi.Context) (any, error) {
	task := sh.session.Store.GetTask(id)
	sh.session.Store.ResetTask(id)

	sh.stack = append(sh.stack, id)
	sh.session.Store.SetTaskExecuting(id)
	sh.session.Tracker.ExecuteTaskStart(task)

	output, err := task.Execute(ctx)

	sh.stack = sh.stack[:len(sh.stack)-1]
	sh.session.Tracker.ExecuteTaskEnd(task, output, err)

	if err != nil {
		sh.session.Store.ResetTask(id)
		return nil, err
	}
	sh.session.Store.SetTaskOutput(id, output)
	sh.session.MarkConsistent(id)
	return output, nil
}

// requireTask implements §4.4 point 4: intern the dependee, reserve the
// edge (panicking if that would close a cycle), make the dependee
// consistent via the strategy-specific makeConsistent, fill the
// reservation with the real dependency, and mark the dependee consistent
// for the remainder of the session.
//
// When the execution stack is empty (a session-root Require call, not a
// nested one from inside a running task) no edge is recorded: per
// invariant 7 a dependency's source is always the task on top of the
// stack, and there is none at the root.
func (sh *shared) requireTask(task taskapi.Task, stamper stamp.OutputStamper, makeConsistent func(store.NodeID) (any, error)) (any, error) {
	dst := sh.session.Store.GetOrCreateTaskNode(task)
	sh.session.Tracker.RequireTaskStart(task)

	src, hasSrc := sh.current()
	if hasSrc {
		if err := sh.session.Store.ReserveTaskRequireDependency(src, dst); err != nil {
			sh.session.Tracker.RequireTaskEnd(task, nil, err)
			panic(err)
		}
	}

	output, err := makeConsistent(dst)
	if err != nil {
		sh.session.Tracker.RequireTaskEnd(task, nil, err)
		return nil, err
	}

	if hasSrc {
		dep := dependency.NewRequireTask(task, stamper, output)
		sh.session.Store.UpdateReservedTaskRequireDependency(src, dst, dep)
	}
	sh.session.MarkConsistent(dst)
	sh.session.Tracker.RequireTaskEnd(task, output, nil)
	return output, nil
}

// recordFileRequire implements §4.4 point 2: stamp and open path, check
// that the calling task transitively requires path's provider (if any),
// and add the require-file edge.
func (sh *shared) recordFileRequire(path string, stamper stamp.FileStamper) (taskapi.ReadCloser, error) {
	cur, ok := sh.current()
	if !ok {
		panic("engine: RequireFile called outside a running task")
	}
	dep, f, err := dependency.NewRequireFile(path, stamper)
	if err != nil {
		return nil, err
	}

	fileID := sh.session.Store.GetOrCreateFileNode(path)
	if providerID, hasProvider := sh.session.Store.GetTaskProvidingFile(fileID); hasProvider && providerID != cur {
		if !sh.session.Store.ContainsTransitiveTaskDependency(cur, providerID) {
			panic(&HiddenDependencyError{
				Consumer: sh.session.Store.GetTask(cur).Key(),
				Provider: sh.session.Store.GetTask(providerID).Key(),
				Path:     path,
			})
		}
	}
	sh.session.Store.AddFileRequireDependency(cur, fileID, dep)
	return f, nil
}

// recordFileProvide implements §4.4 point 3: stamp path (without
// opening), check no other task already provides it, check every
// existing requirer transitively requires the calling task, and add the
// provide-file edge.
func (sh *shared) recordFileProvide(path string, stamper stamp.FileStamper) error {
	cur, ok := sh.current()
	if !ok {
		panic("engine: ProvideFile called outside a running task")
	}
	dep, err := dependency.NewProvideFile(path, stamper)
	if err != nil {
		return err
	}

	fileID := sh.session.Store.GetOrCreateFileNode(path)
	if providerID, hasProvider := sh.session.Store.GetTaskProvidingFile(fileID); hasProvider && providerID != cur {
		panic(&OverlapError{
			Path:        path,
			Provider:    sh.session.Store.GetTask(providerID).Key(),
			NewProvider: sh.session.Store.GetTask(cur).Key(),
		})
	}
	for _, reqID := range sh.session.Store.GetTasksRequiringFile(fileID) {
		if reqID == cur {
			continue
		}
		if !sh.session.Store.ContainsTransitiveTaskDependency(reqID, cur) {
			panic(&HiddenDependencyError{
				Consumer: sh.session.Store.GetTask(reqID).Key(),
				Provider: sh.session.Store.GetTask(cur).Key(),
				Path:     path,
			})
		}
	}
	sh.session.Store.AddFileProvideDependency(cur, fileID, dep)
	return nil
}

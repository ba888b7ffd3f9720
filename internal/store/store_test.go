package store

import (
	"testing"

	"pie/internal/dependency"
	"pie/internal/stamp"
	"pie/internal/taskapi"

	"github.com/stretchr/testify/require"
)

type stubTask string

func (t stubTask) Key() any { return t }
func (t stubTask) Execute(taskapi.Context) (taskapi.Output, error) {
	return string(t), nil
}

func TestGetOrCreateTaskNode_InternsByKeyEquality(t *testing.T) {
	s := New()
	a1 := s.GetOrCreateTaskNode(stubTask("a"))
	a2 := s.GetOrCreateTaskNode(stubTask("a"))
	b := s.GetOrCreateTaskNode(stubTask("b"))

	require.Equal(t, a1, a2)
	require.NotEqual(t, a1, b)
}

func TestGetOrCreateFileNode_NormalizesRelativePaths(t *testing.T) {
	s := New()
	a := s.GetOrCreateFileNode("foo.txt")
	b := s.GetOrCreateFileNode("./foo.txt")

	require.Equal(t, a, b)
}

func TestLookupFileNode_DoesNotCreate(t *testing.T) {
	s := New()
	_, ok := s.LookupFileNode("never-seen.txt")
	require.False(t, ok)

	s.GetOrCreateFileNode("now-seen.txt")
	_, ok = s.LookupFileNode("now-seen.txt")
	require.True(t, ok)
}

func TestReserveTaskRequireDependency_RejectsSelfCycle(t *testing.T) {
	s := New()
	a := s.GetOrCreateTaskNode(stubTask("a"))

	err := s.ReserveTaskRequireDependency(a, a)
	require.Error(t, err)
	var cycleErr *CycleError
	require.ErrorAs(t, err, &cycleErr)
}

func TestReserveTaskRequireDependency_RejectsTransitiveCycle(t *testing.T) {
	s := New()
	a := s.GetOrCreateTaskNode(stubTask("a"))
	b := s.GetOrCreateTaskNode(stubTask("b"))
	c := s.GetOrCreateTaskNode(stubTask("c"))

	require.NoError(t, s.ReserveTaskRequireDependency(a, b))
	s.UpdateReservedTaskRequireDependency(a, b, dependency.NewRequireTask(stubTask("b"), stamp.Equals(), nil))

	require.NoError(t, s.ReserveTaskRequireDependency(b, c))
	s.UpdateReservedTaskRequireDependency(b, c, dependency.NewRequireTask(stubTask("c"), stamp.Equals(), nil))

	// c -> a would close a -> b -> c -> a.
	err := s.ReserveTaskRequireDependency(c, a)
	require.Error(t, err)
}

func TestResetTask_ClearsOutputAndOutgoingEdgesButKeepsIncoming(t *testing.T) {
	s := New()
	a := s.GetOrCreateTaskNode(stubTask("a"))
	b := s.GetOrCreateTaskNode(stubTask("b"))
	c := s.GetOrCreateTaskNode(stubTask("c"))

	require.NoError(t, s.ReserveTaskRequireDependency(a, b))
	s.UpdateReservedTaskRequireDependency(a, b, dependency.NewRequireTask(stubTask("b"), stamp.Equals(), "out"))
	s.SetTaskOutput(b, "out")
	require.NoError(t, s.ReserveTaskRequireDependency(c, a))
	s.UpdateReservedTaskRequireDependency(c, a, dependency.NewRequireTask(stubTask("a"), stamp.Equals(), "a-out"))
	s.SetTaskOutput(a, "a-out")

	require.True(t, s.TaskHasOutput(b))
	require.Len(t, s.GetDependenciesOf(a), 1)

	s.ResetTask(a)
	require.Empty(t, s.GetDependenciesOf(a))
	require.False(t, s.TaskHasOutput(a))
	// c -> a is an incoming edge of a, so it survives a's reset.
	require.Equal(t, []NodeID{c}, s.GetTasksRequiring(a))
	// b's incoming requirer relationship is gone too since a's outgoing
	// edge was the only record of it; b itself is untouched.
	require.True(t, s.TaskHasOutput(b))
}

func TestAddFileProvideDependency_EnforcesProviderUniquenessViaCaller(t *testing.T) {
	s := New()
	a := s.GetOrCreateTaskNode(stubTask("a"))
	f := s.GetOrCreateFileNode("out.txt")

	dep, err := dependency.NewProvideFile("out.txt", stamp.Modified())
	require.NoError(t, err)
	s.AddFileProvideDependency(a, f, dep)

	provider, ok := s.GetTaskProvidingFile(f)
	require.True(t, ok)
	require.Equal(t, a, provider)
}

func TestTopologicallyCompare_OrdersPrerequisitesFirst(t *testing.T) {
	s := New()
	a := s.GetOrCreateTaskNode(stubTask("a"))
	b := s.GetOrCreateTaskNode(stubTask("b"))

	require.NoError(t, s.ReserveTaskRequireDependency(a, b))
	s.UpdateReservedTaskRequireDependency(a, b, dependency.NewRequireTask(stubTask("b"), stamp.Equals(), nil))

	// a requires b, so b (the prerequisite) must sort before a.
	require.Negative(t, s.TopologicallyCompare(b, a))
	require.Positive(t, s.TopologicallyCompare(a, b))
}

func TestContainsTransitiveTaskDependency_FollowsChain(t *testing.T) {
	s := New()
	a := s.GetOrCreateTaskNode(stubTask("a"))
	b := s.GetOrCreateTaskNode(stubTask("b"))
	c := s.GetOrCreateTaskNode(stubTask("c"))

	require.NoError(t, s.ReserveTaskRequireDependency(a, b))
	s.UpdateReservedTaskRequireDependency(a, b, dependency.NewRequireTask(stubTask("b"), stamp.Equals(), nil))
	require.NoError(t, s.ReserveTaskRequireDependency(b, c))
	s.UpdateReservedTaskRequireDependency(b, c, dependency.NewRequireTask(stubTask("c"), stamp.Equals(), nil))

	require.True(t, s.ContainsTransitiveTaskDependency(a, c))
	require.False(t, s.ContainsTransitiveTaskDependency(c, a))
}

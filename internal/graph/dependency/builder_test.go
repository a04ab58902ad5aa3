package dependency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"continuitygraph/pkg/models"
)

func sampleInput() Input {
	return Input{
		Processes: []models.Process{
			{ID: "2", Name: "Billing"},
			{ID: "1", Name: "Payroll"},
		},
		Resources: []models.Resource{
			{ID: "1", Name: "ERP", Type: models.ResourceSystems},
			{ID: "2", Name: "Datacenter", Type: models.ResourceFacilities},
		},
		Dependencies: []models.Dependency{
			{SourceID: "1", TargetID: "2", Type: models.DependencyTechnical, Criticality: 4},
			{SourceID: "1", TargetID: "99", Type: models.DependencyTechnical, Criticality: 2},
		},
		ResourceDependencies: []models.ResourceDependency{
			{SourceID: "1", TargetID: "2", Type: "hosting", IsBlocking: true},
			{SourceID: "2", TargetID: "1", Type: "monitoring"},
		},
		Links: []models.ProcessResourceLink{
			{ProcessID: "1", ResourceID: "1", Criticality: 9},
		},
	}
}

func TestBuildKeysProcessAndResourceNodesSeparately(t *testing.T) {
	g := Build(sampleInput())

	require.Len(t, g.Nodes, 4)
	ids := make([]string, 0, len(g.Nodes))
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"process:1", "process:2", "resource:1", "resource:2"}, ids)

	n, ok := g.Node("resource:1")
	require.True(t, ok)
	assert.Equal(t, KindResource, n.Kind)
	assert.Equal(t, "ERP", n.Label)
	assert.Equal(t, models.ResourceSystems, n.ResourceType)
}

func TestBuildAnnotatesEdgesAndSkipsDanglingOnes(t *testing.T) {
	g := Build(sampleInput())

	require.Len(t, g.Edges, 4)
	require.Len(t, g.Warnings, 1)
	assert.Contains(t, g.Warnings[0], "process:99")

	assert.Equal(t, Edge{Source: "process:1", Target: "process:2", Type: models.DependencyTechnical, Weight: 4}, g.Edges[0])
	assert.Equal(t, Edge{Source: "process:1", Target: "resource:1", Type: EdgeProcessResource, Weight: 5}, g.Edges[1])
	assert.Equal(t, Edge{Source: "resource:1", Target: "resource:2", Type: "hosting", Weight: 5}, g.Edges[2])
	assert.Equal(t, Edge{Source: "resource:2", Target: "resource:1", Type: "monitoring", Weight: 3}, g.Edges[3])
}

func TestBuildIsDeterministic(t *testing.T) {
	in := sampleInput()
	first := Build(in)

	// Shuffle input order; output must not change.
	in.Processes[0], in.Processes[1] = in.Processes[1], in.Processes[0]
	in.ResourceDependencies[0], in.ResourceDependencies[1] = in.ResourceDependencies[1], in.ResourceDependencies[0]
	second := Build(in)

	assert.Equal(t, first.Nodes, second.Nodes)
	assert.Equal(t, first.Edges, second.Edges)
}

func TestBuildEmptyInput(t *testing.T) {
	g := Build(Input{})
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
	assert.Empty(t, g.Warnings)
	_, ok := g.Node("process:1")
	assert.False(t, ok)
}

func TestEdgesOfType(t *testing.T) {
	g := Build(sampleInput())
	links := g.EdgesOfType(EdgeProcessResource)
	require.Len(t, links, 1)
	assert.Equal(t, "resource:1", links[0].Target)
}

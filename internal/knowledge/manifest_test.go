package knowledge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultManifest(t *testing.T) {
	m, err := DefaultManifest()
	require.NoError(t, err)

	assert.Equal(t, []string{"mechanics", "strategy", "nations", "resources"}, m.CategoryNames())

	mechanics, ok := m.Category("mechanics")
	require.True(t, ok)
	assert.Equal(t, []string{
		"economy", "government", "production", "society", "diplomacy",
		"military", "warfare", "geopolitics", "advances",
	}, mechanics.TopicNames())

	resources, ok := m.Category("resources")
	require.True(t, ok)
	assert.Equal(t, "all", resources.Default)

	topic, ok := resources.Topic("all")
	require.True(t, ok)
	assert.Equal(t, "resources/eu5_resources.md", topic.File)
}

func TestParseManifest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "malformed", yaml: "categories: [", wantErr: "failed to parse"},
		{name: "empty", yaml: "categories: []", wantErr: "no categories"},
		{name: "unnamed category", yaml: "categories:\n  - topics: []\n", wantErr: "without a name"},
		{
			name:    "duplicate category",
			yaml:    "categories:\n  - name: a\n  - name: a\n",
			wantErr: `repeats category "a"`,
		},
		{
			name:    "topic without file",
			yaml:    "categories:\n  - name: a\n    topics:\n      - {name: x}\n",
			wantErr: "without name or file",
		},
		{
			name:    "unknown default",
			yaml:    "categories:\n  - name: a\n    default: y\n    topics:\n      - {name: x, file: x.md}\n",
			wantErr: `unknown topic "y"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDocumentTitle(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{name: "atx heading", source: "# Economy Mechanics\n\nbody", expected: "Economy Mechanics"},
		{name: "emphasis inside heading", source: "## The *Crown* Estate\n", expected: "The Crown Estate"},
		{name: "setext heading", source: "Warfare\n=======\n", expected: "Warfare"},
		{name: "first heading wins", source: "intro\n\n## Second\n\n# Third\n", expected: "Second"},
		{name: "no heading", source: "just text\n", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DocumentTitle([]byte(tt.source)))
		})
	}
}

func TestSubcategories(t *testing.T) {
	_, base, _ := newFixture(t)

	assert.Equal(t, []string{"beginner_route", "common_mistakes"}, base.Subcategories("strategy"))
	assert.Nil(t, base.Subcategories("cheats"))
}

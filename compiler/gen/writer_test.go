package gen

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/xjoin/schema/avro"
)

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	cfg := MustNewConfig(WithTarget(dir), WithPackage("example.com/app/xjoindesc"), WithWorkers(2))
	tags := &avro.Schema{Name: "host_tags", Fields: []*avro.Field{str("key"), str("value")}}
	g, err := NewGraph(cfg, hostsSchema(), tags)
	require.NoError(t, err)

	require.NoError(t, Generate(context.Background(), g))

	shared, err := os.ReadFile(filepath.Join(dir, "descriptors.go"))
	require.NoError(t, err)
	assert.Contains(t, string(shared), DefaultHeader)
	assert.Contains(t, string(shared), "package xjoindesc")
	assert.Contains(t, string(shared), "type Field struct")
	assert.Contains(t, string(shared), `"hosts":     HostsFields`)
	assert.Contains(t, string(shared), `"host_tags": HostTagsFields`)

	hosts, err := os.ReadFile(filepath.Join(dir, "hosts_descriptors.go"))
	require.NoError(t, err)
	assert.Contains(t, string(hosts), "var HostsFields = []Field{")
	assert.Contains(t, string(hosts), `Path:        "system_profile.os.name"`)
	assert.Contains(t, string(hosts), `FilterType:  "InputSystemProfile"`)
	assert.Contains(t, string(hosts), `GraphQLType: "[String]"`)

	_, err = os.Stat(filepath.Join(dir, "hosttags_descriptors.go"))
	assert.NoError(t, err)
}

func TestGenerateMissingTarget(t *testing.T) {
	g, err := NewGraph(&Config{}, hostsSchema())
	require.NoError(t, err)
	err = Generate(context.Background(), g)
	assert.True(t, IsConfigError(err))
}

func TestGenerateCanceled(t *testing.T) {
	g, err := NewGraph(&Config{Target: t.TempDir()}, hostsSchema())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Generate(ctx, g), context.Canceled)
}

func TestRender(t *testing.T) {
	g, err := NewGraph(&Config{Header: "// custom header"}, hostsSchema())
	require.NoError(t, err)
	b, err := Render(g, "hosts")
	require.NoError(t, err)
	assert.Contains(t, string(b), "// custom header")
	assert.Contains(t, string(b), "package descriptors")
	assert.Contains(t, string(b), "PrimaryKey:  true")

	_, err = Render(g, "nope")
	assert.True(t, IsSchemaError(err))
}

func TestGoName(t *testing.T) {
	assert.Equal(t, "Hosts", goName("hosts"))
	assert.Equal(t, "HostTags", goName("host_tags"))
	assert.Equal(t, "S1hosts", goName("1hosts"))
}

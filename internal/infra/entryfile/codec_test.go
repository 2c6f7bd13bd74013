package entryfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runoshun/confcache/internal/domain"
)

const sampleYAML = `key: app
rootProjectName: app
build:
  name: app
  rootDir: /src
projects:
  - path: ":"
    dir: /src
    buildDir: /src/build
  - path: ":lib"
    dir: /src/lib
    buildDir: /out/lib
    repositories:
      - name: central
        url: https://repo.maven.apache.org/maven2/
includedBuilds:
  - build:
      name: logic
      rootDir: /src/logic
    entry:
      rootProjectName: logic
      projects:
        - path: ":conventions"
          dir: /src/logic/conventions
work:
  - project: ":"
    task: assemble
    dependsOn: [":lib:jar"]
  - project: ":lib"
    task: jar
`

func TestCodec_Decode(t *testing.T) {
	entry, err := Codec{}.Decode([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "app", entry.Key)
	assert.Equal(t, "/src", entry.Definition.RootDir)
	require.Len(t, entry.Projects, 2)
	assert.Equal(t, "/out/lib", entry.Projects[1].BuildDir)
	assert.Equal(t, "central", entry.Projects[1].Repositories[0].Name)
	require.Len(t, entry.IncludedBuilds, 1)
	require.NotNil(t, entry.IncludedBuilds[0].Entry)
	assert.Equal(t, "logic", entry.IncludedBuilds[0].Entry.RootProjectName)
	assert.Equal(t, []string{":lib:jar"}, entry.Work[0].DependsOn)
	require.NoError(t, entry.Validate())
}

func TestCodec_Decode_UnknownField(t *testing.T) {
	_, err := Codec{}.Decode([]byte("key: app\nflavour: vanilla\n"))

	assert.ErrorIs(t, err, domain.ErrCorruptEntry)
}

func TestCodec_Decode_Empty(t *testing.T) {
	_, err := Codec{}.Decode(nil)

	assert.ErrorIs(t, err, domain.ErrCorruptEntry)
}

func TestCodec_Encode(t *testing.T) {
	entry, err := Codec{}.Decode([]byte(sampleYAML))
	require.NoError(t, err)

	data, err := Codec{}.Encode(entry)
	require.NoError(t, err)

	assert.Contains(t, string(data), "rootProjectName: app")
	assert.Contains(t, string(data), "buildDir: /out/lib")
}

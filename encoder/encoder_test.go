package encoder

import (
	"context"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clipforge/config"
)

func TestAssemblyErrorTruncatesLongOutput(t *testing.T) {
	long := strings.Repeat("x", 2000) + "TAIL"
	err := &AssemblyError{Op: "mux", Cause: "exit status 1", Output: long}

	msg := err.Error()
	assert.Contains(t, msg, "encoder mux")
	assert.Contains(t, msg, "TAIL", "the tail of the diagnostic must survive truncation")
	assert.Less(t, len(msg), 900)
}

func TestAssemblyErrorKeepsShortOutputVerbatim(t *testing.T) {
	err := &AssemblyError{Op: "concat", Cause: "exit status 1", Output: "No such file or directory"}
	assert.Contains(t, err.Error(), "No such file or directory")
}

func TestConcatRejectsEmptyClipList(t *testing.T) {
	f := New(config.Default().Video, logrus.New())
	err := f.ConcatClips(context.Background(), nil, "out.mp4")

	var aerr *AssemblyError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "concat", aerr.Op)
}

func TestNewDefaultsToPathBinaries(t *testing.T) {
	f := New(config.Default().Video, logrus.New())
	assert.Equal(t, "ffmpeg", f.Bin)
	assert.Equal(t, "ffprobe", f.ProbeBin)
}

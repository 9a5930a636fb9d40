package gallery

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/ilkoid/poncho-patterns/pkg/config"
	"github.com/ilkoid/poncho-patterns/pkg/grouping"
	"github.com/ilkoid/poncho-patterns/pkg/rules"
)

type mapFetcher map[string][]byte

func (m mapFetcher) Fetch(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, ok := m[key]
	if !ok {
		return nil, errors.New("no such object")
	}
	return d, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

var sideRules = []rules.RoleRule{
	{TargetRole: rules.RoleFront, RuleType: rules.RuleContains, RuleValue: "front"},
	{TargetRole: rules.RoleRear, RuleType: rules.RuleContains, RuleValue: "rear"},
}

func TestBuild(t *testing.T) {
	names := []string{
		"vehicle_001_front.jpg",
		"vehicle_001_front_2.jpg",
		"vehicle_001_rear.jpg",
		"vehicle_002_front.jpg",
		"truck.jpg",
	}
	res := grouping.GroupAndAssignRoles(names, `^vehicle_(\d+)_`, sideRules, nil)

	img := pngBytes(t, 640, 480)
	f := mapFetcher{
		"lane/vehicle_001_front.jpg": img,
		"lane/vehicle_001_rear.jpg":  img,
	}
	keys := map[string]string{
		"vehicle_001_front.jpg": "lane/vehicle_001_front.jpg",
		"vehicle_001_rear.jpg":  "lane/vehicle_001_rear.jpg",
	}
	out := t.TempDir()

	m, err := Build(context.Background(), res, keys, f, Options{OutDir: out, ThumbSize: 64, Limiter: rate.NewLimiter(rate.Inf, 1)})
	require.NoError(t, err)

	require.Len(t, m.Groups, 2)
	g1 := m.Groups[0]
	assert.Equal(t, "001", g1.Key)
	assert.True(t, g1.Complete)
	assert.Equal(t, 3, g1.Files)
	assert.Equal(t, "vehicle_001_front.jpg", g1.Images[rules.RoleFront].Filename)
	assert.Equal(t, "001/front.jpg", g1.Images[rules.RoleFront].Thumbnail)

	g2 := m.Groups[1]
	assert.False(t, g2.Complete)
	assert.Equal(t, []rules.ImageRole{rules.RoleRear}, g2.Missing)
	assert.NotEmpty(t, g2.Images[rules.RoleFront].Error)
	assert.Equal(t, 1, m.Failed)
	require.Len(t, m.Unmatched, 1)
	assert.Equal(t, "truck.jpg", m.Unmatched[0].Filename)

	thumb, err := os.ReadFile(filepath.Join(out, "001", "rear.jpg"))
	require.NoError(t, err)
	decoded, _, err := image.Decode(bytes.NewReader(thumb))
	require.NoError(t, err)
	assert.Equal(t, 64, decoded.Bounds().Dx())
	assert.Equal(t, 48, decoded.Bounds().Dy())

	raw, err := os.ReadFile(filepath.Join(out, ManifestFile))
	require.NoError(t, err)
	var back Manifest
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, `^vehicle_(\d+)_`, back.GroupPattern)
	assert.Len(t, back.Groups, 2)
}

func TestBuildCanceled(t *testing.T) {
	res := grouping.GroupAndAssignRoles([]string{"vehicle_001_front.jpg"}, `^vehicle_(\d+)_`, sideRules, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Build(ctx, res, nil, mapFetcher{}, Options{OutDir: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildErrors(t *testing.T) {
	res := grouping.GroupAndAssignRoles(nil, `^(x)$`, sideRules, nil)
	_, err := Build(context.Background(), nil, nil, mapFetcher{}, Options{OutDir: t.TempDir()})
	assert.Error(t, err)
	_, err = Build(context.Background(), res, nil, nil, Options{OutDir: t.TempDir()})
	assert.Error(t, err)
	_, err = Build(context.Background(), res, nil, mapFetcher{}, Options{})
	assert.Error(t, err)
}

func TestDirName(t *testing.T) {
	assert.Equal(t, "A-1_b", DirName("A-1_b"))
	assert.Equal(t, "___etc", DirName("../etc"))
	assert.Equal(t, "_", DirName(""))

	used := map[string]int{}
	assert.Equal(t, "a_b", uniqueDir(used, "a_b"))
	assert.Equal(t, "a_b~2", uniqueDir(used, "a_b"))
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.GalleryConfig{OutDir: "out", RateLimit: 2})
	assert.Equal(t, "out", opts.OutDir)
	assert.Equal(t, 320, opts.ThumbSize)
	require.NotNil(t, opts.Limiter)
	assert.Equal(t, rate.Limit(2), opts.Limiter.Limit())
	assert.Equal(t, 5, opts.Limiter.Burst())
}

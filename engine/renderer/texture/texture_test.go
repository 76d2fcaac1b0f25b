package texture

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/backend/recording"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer/bind_group_provider"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func checker() common.TextureStagingData {
	return common.TextureStagingData{
		Pixels: []byte{
			255, 0, 0, 255, 0, 255, 0, 255,
			0, 0, 255, 255, 255, 255, 255, 255,
		},
		Width:  2,
		Height: 2,
	}
}

func TestSampledTexture(t *testing.T) {
	dev := recording.NewDevice()
	tex, err := NewSampledTexture(dev, checker(), "checker")
	require.NoError(t, err)

	require.Len(t, dev.Textures, 1)
	rec := dev.Textures[0]
	assert.Equal(t, backend.TextureFormatRGBA8UnormSrgb, rec.Descriptor.Format)
	assert.Equal(t, checker().Pixels, rec.Data)
	assert.Equal(t, uint32(8), rec.BytesPerRow)
	assert.Equal(t, uint32(2), tex.Width())
	assert.Zero(t, tex.Generation())

	require.Len(t, dev.Samplers, 1)
	s := dev.Samplers[0].Descriptor
	assert.Equal(t, backend.FilterModeNearest, s.MagFilter)
	assert.Equal(t, backend.FilterModeNearest, s.MinFilter)
	assert.Equal(t, backend.AddressModeClampToEdge, s.AddressModeU)
	assert.Equal(t, backend.AddressModeClampToEdge, s.AddressModeV)

	tex.Release()
	assert.True(t, rec.Released)
	assert.True(t, rec.Views[0].Released)
	assert.True(t, dev.Samplers[0].Released)
}

func TestSamplerOverrides(t *testing.T) {
	dev := recording.NewDevice()
	_, err := NewSampledTexture(dev, checker(), "checker",
		WithFilterMode(backend.FilterModeLinear),
		WithAddressMode(backend.AddressModeRepeat),
		WithMaxAnisotropy(4),
	)
	require.NoError(t, err)

	s := dev.Samplers[0].Descriptor
	assert.Equal(t, backend.FilterModeLinear, s.MagFilter)
	assert.Equal(t, backend.FilterModeLinear, s.MipmapFilter)
	assert.Equal(t, backend.AddressModeRepeat, s.AddressModeW)
	assert.Equal(t, uint16(4), s.MaxAnisotropy)
}

func TestSampledTextureRejectsBadImages(t *testing.T) {
	dev := recording.NewDevice()

	_, err := NewSampledTexture(dev, common.TextureStagingData{}, "empty")
	assert.True(t, errors.Is(err, ErrInvalidImage))

	short := checker()
	short.Pixels = short.Pixels[:12]
	_, err = NewSampledTexture(dev, short, "short")
	assert.True(t, errors.Is(err, ErrInvalidImage))

	assert.Empty(t, dev.Textures, "nothing is allocated for rejected input")
}

func TestSampledTextureUploadFailureReleases(t *testing.T) {
	dev := recording.NewDevice()
	dev.FailNext(recording.OpWriteTexture, errors.New("lost"))

	_, err := NewSampledTexture(dev, checker(), "checker")
	require.Error(t, err)
	assert.Empty(t, dev.LiveTextures())
}

func TestDepthTexture(t *testing.T) {
	dev := recording.NewDevice()
	depth, err := NewDepthTexture(dev, 800, 600, 7)
	require.NoError(t, err)

	assert.Equal(t, backend.TextureFormatDepth32Float, depth.Format())
	assert.Equal(t, uint64(7), depth.Generation())
	assert.Nil(t, depth.Sampler())
	assert.NotNil(t, depth.View())
	assert.NotZero(t, dev.Textures[0].Descriptor.Usage&backend.TextureUsageRenderAttachment)

	_, err = NewDepthTexture(dev, 0, 600, 8)
	assert.True(t, errors.Is(err, ErrInvalidImage))
	assert.Len(t, dev.Textures, 1)
}

func TestBindGroupOptionsMatchSlot(t *testing.T) {
	dev := recording.NewDevice()
	tex, err := NewSampledTexture(dev, White(), "white")
	require.NoError(t, err)

	slot := Slot(1)
	layout, err := dev.CreateBindGroupLayout(slot.LayoutDescriptor())
	require.NoError(t, err)

	p, err := bind_group_provider.NewBindGroupProvider(dev, slot, layout, tex.BindGroupOptions()...)
	require.NoError(t, err)
	bg := dev.BindGroups[0]
	assert.Same(t, bg, p.BindGroup())
	assert.Equal(t, tex.View(), bg.Descriptor.Entries[0].TextureView)
	assert.Equal(t, tex.Sampler(), bg.Descriptor.Entries[1].Sampler)
}

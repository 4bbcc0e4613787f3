package extract

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/mogaika/xnbtool/export"
	"github.com/mogaika/xnbtool/textureformats"
	"github.com/mogaika/xnbtool/utils"
	"github.com/mogaika/xnbtool/xnb"
	"github.com/mogaika/xnbtool/xnb/content"
)

var outputExtensions = []string{".glb", ".png", ".json"}

const dumpExtension = ".dump.txt"

type output struct {
	path string
	data []byte
}

type sidecar struct {
	Type    string               `json:"type"`
	Readers []content.TypeReader `json:"readers"`
	Primary content.Content      `json:"primary"`
	Shared  []content.Content    `json:"shared,omitempty"`
}

// outputs renders the files for a decoded graph in memory. Nothing is
// written here so a failure leaves no partial output behind.
func (e *Extractor) outputs(g *content.Graph, base string, log *zap.Logger) ([]output, error) {
	switch primary := g.Primary.(type) {
	case *content.Model, *content.SkinnedModel:
		if !e.cfg.Export.Models {
			return nil, nil
		}
		scene, err := export.Export(g)
		if err != nil {
			return nil, err
		}
		for _, w := range scene.Warnings {
			log.Warn("Export warning", zap.String("warning", w))
		}
		var buf bytes.Buffer
		if err := scene.WriteGLB(&buf); err != nil {
			return nil, err
		}
		return []output{{base + ".glb", buf.Bytes()}}, nil

	case *content.Texture2D:
		if !e.cfg.Export.Textures {
			return nil, nil
		}
		var buf bytes.Buffer
		if err := textureformats.WritePNG(&buf, primary); err != nil {
			return nil, err
		}
		return []output{{base + ".png", buf.Bytes()}}, nil

	default:
		if !e.cfg.Export.Sidecars {
			return nil, nil
		}
		data, err := json.MarshalIndent(&sidecar{
			Type:    fmt.Sprintf("%T", primary),
			Readers: g.TypeReaders,
			Primary: primary,
			Shared:  g.Shared,
		}, "", "  ")
		if err != nil {
			return nil, err
		}
		return []output{{base + ".json", data}}, nil
	}
}

func dumpOutput(base string, c *xnb.Container, g *content.Graph) output {
	return output{base + dumpExtension, []byte(utils.SDump(c.Header, g))}
}

// writeAtomic writes data next to path and renames it into place.
func writeAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmp := f.Name()

	_, err = f.Write(data)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp, path)
	}
	if err != nil {
		os.Remove(tmp)
	}
	return err
}

// Package sprite compiles a directory tree of SVG icons into a single
// sprite sheet of <symbol> elements and emits it as a build asset.
package sprite

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/beevik/etree"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/teranos/spritegen/errors"
	"github.com/teranos/spritegen/host"
	"github.com/teranos/spritegen/icons"
	"github.com/teranos/spritegen/logger"
)

// PluginName identifies the sprite compiler's hooks
const PluginName = "SvgSpriteLoaderPlugin"

const (
	svgNamespace   = "http://www.w3.org/2000/svg"
	xlinkNamespace = "http://www.w3.org/1999/xlink"
)

// attributes of a source <svg> that describe the document, not the drawing
var droppedRootAttrs = map[string]bool{
	"xmlns":       true,
	"xmlns:xlink": true,
	"version":     true,
	"id":          true,
	"x":           true,
	"y":           true,
	"width":       true,
	"height":      true,
	"viewBox":     true,
}

// Symbol is one compiled icon
type Symbol struct {
	ID     string `toml:"id"`
	Source string `toml:"source"`
}

// Sheet is a compiled sprite
type Sheet struct {
	Content []byte
	Symbols []Symbol
}

type manifest struct {
	Symbols []Symbol `toml:"symbols"`
}

// Collector lists the icons under one directory. The coordinator passes the
// extractor that also feeds the IconType union, so both hold the same icons.
type Collector interface {
	Extract(dir string) (*icons.Set, error)
}

// Plugin is the sprite compiler
type Plugin struct {
	opts      Options
	fs        afero.Fs
	collector Collector
	logger    *zap.SugaredLogger
}

// New creates a sprite compiler. The options are copied. A nil collector
// takes every SVG, keeping the first file for each name.
func New(opts Options, fsys afero.Fs, collector Collector, log *zap.SugaredLogger) *Plugin {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	log = logger.OrNop(log)
	if collector == nil {
		// Default extractor options cannot be invalid
		collector, _ = icons.NewExtractor(fsys, icons.ExtractorOptions{Logger: log})
	}
	return &Plugin{
		opts:      opts.withDefaults(),
		fs:        fsys,
		collector: collector,
		logger:    log,
	}
}

// Options returns the effective options
func (p *Plugin) Options() Options {
	return p.opts
}

// Apply registers the compiler with c. Every compilation gets a tap at
// StageAdditions that compiles all SVGs under the compilation's context
// dependencies.
func (p *Plugin) Apply(c host.Compiler) error {
	c.OnThisCompilation(PluginName, func(comp host.Compilation) error {
		comp.OnProcessAssets(host.Tap{Name: PluginName, Stage: host.StageAdditions}, func() error {
			return p.emit(comp)
		})
		return nil
	})
	return nil
}

func (p *Plugin) emit(comp host.Compilation) error {
	sheet, err := p.Compile(comp.ContextDependencies())
	if err != nil {
		return err
	}

	comp.EmitAsset(p.opts.SpriteFilename, sheet.Content)
	p.logger.Debugw("Sprite emitted",
		logger.FieldCompilation, comp.ID(),
		logger.FieldAsset, p.opts.SpriteFilename,
		logger.FieldCount, len(sheet.Symbols),
		logger.FieldSize, len(sheet.Content))

	if p.opts.ManifestFilename != "" {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(manifest{Symbols: sheet.Symbols}); err != nil {
			return errors.Wrap(err, "failed to encode sprite manifest")
		}
		comp.EmitAsset(p.opts.ManifestFilename, buf.Bytes())
	}
	return nil
}

// Compile builds one sheet from the icons the collector finds under dirs.
// Directories are visited in the given order; across directories the first
// symbol with a given id wins. Missing directories are skipped.
func (p *Plugin) Compile(dirs []string) (*Sheet, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("svg")
	root.CreateAttr("xmlns", svgNamespace)
	root.CreateAttr("xmlns:xlink", xlinkNamespace)

	parent := root
	if !p.opts.PlainSprite {
		parent = root.CreateElement("defs")
	}

	seen := make(map[string]string)
	var symbols []Symbol
	for _, dir := range dirs {
		set, err := p.collect(dir)
		if err != nil {
			return nil, err
		}
		for _, icon := range set.Icons() {
			file := filepath.Join(dir, filepath.FromSlash(icon.Path))
			id := p.opts.SymbolIDPrefix + icon.Name
			if prev, ok := seen[id]; ok {
				p.logger.Debugw("Skipping duplicate symbol",
					logger.FieldIcon, id,
					logger.FieldPath, file,
					logger.FieldDuplicate, prev)
				continue
			}

			symbol, err := p.symbol(file, id)
			if err != nil {
				return nil, err
			}
			parent.AddChild(symbol)
			seen[id] = file
			symbols = append(symbols, Symbol{ID: id, Source: file})
		}
	}

	if !p.opts.PlainSprite {
		for _, s := range symbols {
			use := root.CreateElement("use")
			use.CreateAttr("xlink:href", "#"+s.ID)
		}
	}

	doc.Indent(2)
	content, err := doc.WriteToBytes()
	if err != nil {
		return nil, errors.Wrap(err, "failed to serialize sprite")
	}
	return &Sheet{Content: content, Symbols: symbols}, nil
}

// collect returns the icons under dir. Missing directories yield nothing.
func (p *Plugin) collect(dir string) (*icons.Set, error) {
	info, err := p.fs.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, errors.WrapFilesystem(err, "stat", dir)
	}
	if !info.IsDir() {
		return nil, nil
	}
	return p.collector.Extract(dir)
}

// symbol parses file and converts its root <svg> into a <symbol>
func (p *Plugin) symbol(file, id string) (*etree.Element, error) {
	data, err := afero.ReadFile(p.fs, file)
	if err != nil {
		return nil, errors.WrapFilesystem(err, "read", file)
	}

	src := etree.NewDocument()
	if err := src.ReadFromBytes(data); err != nil {
		return nil, errors.Wrapf(err, "malformed SVG %s", file)
	}
	svg := src.Root()
	if svg == nil || svg.Tag != "svg" {
		return nil, errors.Newf("malformed SVG %s: root element is not <svg>", file)
	}

	symbol := etree.NewElement("symbol")
	symbol.CreateAttr("id", id)
	if vb := viewBox(svg); vb != "" {
		symbol.CreateAttr("viewBox", vb)
	}
	for _, attr := range svg.Attr {
		if droppedRootAttrs[attr.FullKey()] || attr.Space == "xmlns" {
			continue
		}
		symbol.CreateAttr(attr.FullKey(), attr.Value)
	}
	for _, child := range svg.ChildElements() {
		symbol.AddChild(child.Copy())
	}
	return symbol, nil
}

// viewBox returns the source viewBox, or one derived from width and height
func viewBox(svg *etree.Element) string {
	if vb := svg.SelectAttrValue("viewBox", ""); vb != "" {
		return vb
	}
	w := strings.TrimSuffix(svg.SelectAttrValue("width", ""), "px")
	h := strings.TrimSuffix(svg.SelectAttrValue("height", ""), "px")
	if w == "" || h == "" {
		return ""
	}
	return "0 0 " + w + " " + h
}

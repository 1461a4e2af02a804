// Package web serves decoded DC6 frames over HTTP.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/andybons/gogif"
	"github.com/golang/glog"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/vincent-petithory/dataurl"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/go-dc6/convert"
	"badc0de.net/pkg/go-dc6/dc6"
	"badc0de.net/pkg/go-dc6/encode"
	"badc0de.net/pkg/go-dc6/palette"
	"badc0de.net/pkg/go-dc6/paths"
)

const generation = 1 // bump if the way we generate images changes

type Handler struct {
	root        string
	pal         *palette.Palette
	transparent color.RGBA
}

// NewHandler constructs a web handler serving the DC6 files directly inside
// root, rendered with the passed palette.
func NewHandler(root string, pal *palette.Palette, transparent color.RGBA) *Handler {
	return &Handler{
		root:        root,
		pal:         pal,
		transparent: transparent,
	}
}

var errNotFound = errors.New("no such dc6 file")

// open opens a DC6 file from the root directory. Only plain file names are
// accepted.
func (h *Handler) open(name string) (*os.File, os.FileInfo, error) {
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") || !strings.EqualFold(filepath.Ext(name), paths.Ext) {
		return nil, nil, errNotFound
	}
	f, err := os.Open(filepath.Join(h.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, errNotFound
		}
		return nil, nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, st, nil
}

func openError(w http.ResponseWriter, err error) {
	if err == errNotFound {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, "failed to open data file", http.StatusInternalServerError)
}

// checkETag sets caching headers, and reports whether the client already
// has the current version.
func checkETag(w http.ResponseWriter, r *http.Request, st os.FileInfo, what string) bool {
	etag := fmt.Sprintf(`W/"dc6:%d:%s:%d:%x:%s"`, generation, st.Name(), st.Size(), st.ModTime().UnixNano(), what)
	w.Header().Set("Cache-Control", "public; max-age=36000") // 36000 = 10h
	w.Header().Set("ETag", etag)
	w.Header().Set("Last-Modified", st.ModTime().UTC().Format(http.TimeFormat))
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

func colorKey(c color.RGBA) string {
	return fmt.Sprintf("%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func decodeStatus(err error) int {
	if errors.Is(err, dc6.ErrIO) {
		return http.StatusInternalServerError
	}
	return http.StatusUnprocessableEntity
}

func (h *Handler) listHandler(w http.ResponseWriter, r *http.Request) {
	files, err := paths.ListDir(h.root)
	if err != nil {
		glog.Errorf("listing %s: %v", h.root, err)
		http.Error(w, "failed to list files", http.StatusInternalServerError)
		return
	}
	names := []string{}
	for _, f := range files {
		names = append(names, filepath.Base(f))
	}
	writeJSON(w, names)
}

type frameInfo struct {
	Index            int    `json:"index"`
	Direction        int    `json:"direction"`
	FrameInDirection int    `json:"frame"`
	Offset           uint32 `json:"file_offset"`
	Width            uint32 `json:"width"`
	Height           uint32 `json:"height"`
	OffsetX          int    `json:"offset_x"`
	OffsetY          int    `json:"offset_y"`
	Flipped          bool   `json:"flipped"`
	Length           uint32 `json:"length"`
	Error            string `json:"error,omitempty"`
}

type fileInfo struct {
	Name               string      `json:"name"`
	Directions         uint32      `json:"directions"`
	FramesPerDirection uint32      `json:"frames_per_direction"`
	Frames             []frameInfo `json:"frames"`
}

func (h *Handler) infoHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	f, st, err := h.open(name)
	if err != nil {
		openError(w, err)
		return
	}
	defer f.Close()
	if checkETag(w, r, st, "info") {
		return
	}

	file, err := dc6.NewFile(f)
	if err != nil {
		http.Error(w, fmt.Sprintf("%s: %v", dc6.Kind(err), err), decodeStatus(err))
		return
	}
	info := fileInfo{
		Name:               name,
		Directions:         file.Header.Directions,
		FramesPerDirection: file.Header.FramesPerDirection,
		Frames:             []frameInfo{},
	}
	offsets := file.FrameOffsets()
	for i := 0; i < file.FrameCount(); i++ {
		fi := frameInfo{Index: i, Offset: offsets[i]}
		fi.Direction, fi.FrameInDirection = file.Position(i)
		fh, err := file.ReadFrameHeader(i)
		if err != nil {
			fi.Error = fmt.Sprintf("%s: %v", dc6.Kind(err), err)
		} else {
			fi.Width, fi.Height, fi.Length = fh.Width, fh.Height, fh.Length
			fi.OffsetX, fi.OffsetY = fh.Offset().X, fh.Offset().Y
			fi.Flipped = fh.IsFlipped()
		}
		info.Frames = append(info.Frames, fi)
	}
	writeJSON(w, info)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}

func (h *Handler) frameHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	idx, err := strconv.Atoi(vars["frame"])
	if err != nil {
		http.Error(w, "frame not a number", http.StatusBadRequest)
		return
	}
	enc, ok := encode.Lookup(vars["ext"])
	if !ok {
		http.Error(w, "unsupported format", http.StatusNotFound)
		return
	}

	f, st, err := h.open(vars["name"])
	if err != nil {
		openError(w, err)
		return
	}
	defer f.Close()
	if checkETag(w, r, st, fmt.Sprintf("frame:%d:%s:%s", idx, colorKey(h.transparent), enc.MIME())) {
		return
	}

	file, err := dc6.NewFile(f)
	if err != nil {
		http.Error(w, fmt.Sprintf("%s: %v", dc6.Kind(err), err), decodeStatus(err))
		return
	}
	if idx >= file.FrameCount() {
		http.Error(w, "no such frame", http.StatusNotFound)
		return
	}
	fr, err := file.DecodeFrame(idx, h.pal, &dc6.Options{Transparent: h.transparent})
	if err != nil {
		glog.Errorf("error decoding %s frame %d: %v", vars["name"], idx, err)
		http.Error(w, fmt.Sprintf("%s: %v", dc6.Kind(err), err), decodeStatus(err))
		return
	}

	buf := &bytes.Buffer{}
	if err := enc.Encode(buf, fr.Image, encode.Options{Quality: -1, Title: vars["name"]}); err != nil {
		http.Error(w, "image could not be generated", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", enc.MIME())
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// decodeAll decodes every frame of the named file through the converter, so
// faulty frames are reported instead of failing the whole request.
func (h *Handler) decodeAll(r *http.Request, name string, f *os.File) ([]*convert.Output, convert.Result) {
	sink := &convert.Collect{}
	c := &convert.Converter{Palette: h.pal, Transparent: h.transparent, Sink: sink}
	res := c.ConvertReader(r.Context(), name, f)
	return sink.Outputs(), res
}

// frameRect places a frame relative to the sprite's anchor point: the
// offset is the bottom left corner of the frame.
func frameRect(o *convert.Output) image.Rectangle {
	off := o.Header.Offset()
	return image.Rect(off.X, off.Y-o.Height, off.X+o.Width, off.Y)
}

func (h *Handler) directionGIFHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	dir, err := strconv.Atoi(vars["dir"])
	if err != nil {
		http.Error(w, "dir not a number", http.StatusBadRequest)
		return
	}
	delay := 5
	if d := r.URL.Query().Get("delay"); d != "" {
		delay, _ = strconv.Atoi(d)
		// ignore invalid delay
	}

	f, st, err := h.open(vars["name"])
	if err != nil {
		openError(w, err)
		return
	}
	defer f.Close()
	if checkETag(w, r, st, fmt.Sprintf("dir:%d:%d:%s:image/gif", dir, delay, colorKey(h.transparent))) {
		return
	}

	outs, res := h.decodeAll(r, vars["name"], f)
	var frames []*convert.Output
	bounds := image.Rectangle{}
	for _, o := range outs {
		if o.Direction != dir {
			continue
		}
		frames = append(frames, o)
		bounds = bounds.Union(frameRect(o))
	}
	if len(frames) == 0 {
		msg := "no such direction"
		if len(res.Failures) > 0 {
			msg = res.Failures[0].Error()
		}
		http.Error(w, msg, http.StatusNotFound)
		return
	}
	canvas := image.Rect(0, 0, bounds.Dx(), bounds.Dy())

	g := gif.GIF{}
	quantizer := gogif.MedianCutQuantizer{NumColor: 255} // Up to 255 colors plus 1 space for transparency.
	for _, o := range frames {
		pal := image.NewPaletted(o.Image.Bounds(), nil)
		quantizer.Quantize(pal, o.Image.Bounds(), o.Image, image.Point{})

		// gogif's quantizer has no room for transparency, so the frame is
		// drawn again onto a palette that starts with it.
		palTransparent := image.NewPaletted(canvas, append(color.Palette{color.Transparent}, pal.Palette...))
		dst := frameRect(o).Sub(bounds.Min)
		draw.Draw(palTransparent, dst, o.Image, image.Point{}, draw.Over)

		g.Image = append(g.Image, palTransparent)
		g.Delay = append(g.Delay, delay)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}
	g.BackgroundIndex = 0

	buf := &bytes.Buffer{}
	if err := gif.EncodeAll(buf, &g); err != nil {
		http.Error(w, "animation could not be generated", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/gif")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

var sheetTemplate = template.Must(template.New("sheet").Parse(`<!DOCTYPE html>
<html><head><meta charset="utf-8"><title>{{.Name}}</title>
<style>img{image-rendering:pixelated;margin:2px;border:1px dotted #888}</style></head>
<body><h1>{{.Name}}</h1>
{{range .Directions}}<div><h2>direction {{.Index}}</h2>{{range .Frames}}<img src="{{.Src}}" width="{{.Width}}" height="{{.Height}}" title="frame {{.Index}}">{{end}}</div>
{{end}}{{if .Failures}}<h2>errors</h2><ul>{{range .Failures}}<li>{{.}}</li>{{end}}</ul>{{end}}
</body></html>
`))

type sheetFrame struct {
	Index         int
	Width, Height int
	Src           template.URL
}

type sheetDirection struct {
	Index  int
	Frames []sheetFrame
}

func (h *Handler) sheetHandler(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	f, st, err := h.open(name)
	if err != nil {
		openError(w, err)
		return
	}
	defer f.Close()
	if checkETag(w, r, st, fmt.Sprintf("sheet:%s:text/html", colorKey(h.transparent))) {
		return
	}

	outs, res := h.decodeAll(r, name, f)
	var p struct {
		Name       string
		Directions []sheetDirection
		Failures   []string
	}
	p.Name = name
	for _, o := range outs {
		for len(p.Directions) <= o.Direction {
			p.Directions = append(p.Directions, sheetDirection{Index: len(p.Directions)})
		}
		buf := &bytes.Buffer{}
		if err := png.Encode(buf, o.Image); err != nil {
			http.Error(w, "image could not be generated", http.StatusInternalServerError)
			return
		}
		d := &p.Directions[o.Direction]
		d.Frames = append(d.Frames, sheetFrame{
			Index:  o.Index,
			Width:  o.Width * 2,
			Height: o.Height * 2,
			Src:    template.URL(dataurl.New(buf.Bytes(), "image/png").String()),
		})
	}
	for _, fl := range res.Failures {
		p.Failures = append(p.Failures, fl.Error())
	}

	buf := &bytes.Buffer{}
	if err := sheetTemplate.Execute(buf, p); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// traced records every request as an x/net/trace event, visible at
// /debug/requests.
func traced(family string, hf http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tr := trace.New(family, r.URL.Path)
		defer tr.Finish()
		tr.LazyPrintf("vars: %v", mux.Vars(r))
		hf(w, r)
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	const name = "{name:[A-Za-z0-9_.\\-]+}"
	r.HandleFunc("/dc6/", traced("dc6.list", h.listHandler))
	r.HandleFunc("/dc6/"+name+"/dir/{dir:[0-9]+}.gif", traced("dc6.direction", h.directionGIFHandler))
	r.HandleFunc("/dc6/"+name+"/sheet.html", traced("dc6.sheet", h.sheetHandler))
	r.HandleFunc("/dc6/"+name+"/{frame:[0-9]+}.{ext:png|gif|jpg|bmp|svg}", traced("dc6.frame", h.frameHandler))
	r.HandleFunc("/dc6/"+name, traced("dc6.info", h.infoHandler))
}

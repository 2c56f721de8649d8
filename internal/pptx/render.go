// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"path"
	"strconv"
	"strings"

	"github.com/beevik/etree"

	"github.com/pdiddy/casedeck/internal/assets"
	"github.com/pdiddy/casedeck/pkg/types"
)

// render carries the mutable state of one Render call: a full copy of the
// template's parts plus the media counter for logos added along the way.
type render struct {
	tmpl  *Template
	names []string
	parts map[string][]byte
	media int
	exts  map[string]string // content-type defaults to ensure, ext -> MIME
}

// Render produces a finished deck: it drops the slides the presentation
// type does not use, substitutes text tokens and picture placeholders on
// the survivors, and repacks the archive. The Template itself is never
// modified, so one Template may serve concurrent renders.
func (t *Template) Render(ptype types.PresentationType, values types.PlaceholderMap) ([]byte, error) {
	if err := ptype.Validate(); err != nil {
		return nil, err
	}
	keep := t.keepIndices(ptype)
	if len(keep) == 0 {
		return nil, &types.RenderError{Reason: fmt.Sprintf("template has no slide group for presentation type %d", int(ptype))}
	}

	r := &render{
		tmpl:  t,
		names: append([]string(nil), t.names...),
		parts: make(map[string][]byte, len(t.parts)),
		exts:  make(map[string]string),
	}
	for name, data := range t.parts {
		r.parts[name] = data
	}

	if err := r.dropSlides(keep); err != nil {
		return nil, err
	}
	for _, idx := range keep {
		if err := r.substituteSlide(t.slides[idx], values); err != nil {
			return nil, err
		}
	}
	if err := r.ensureContentTypes(); err != nil {
		return nil, err
	}
	return r.pack()
}

// dropSlides removes every slide not in keep: the slide part and its rels,
// the sldIdLst entry, the presentation relationship, the content-type
// override, and any media parts no surviving slide references. The
// surviving sldIdLst is rebuilt in keep order.
func (r *render) dropSlides(keep []int) error {
	kept := make(map[int]bool, len(keep))
	for _, idx := range keep {
		kept[idx] = true
	}
	var dropped []slideRef
	for idx, s := range r.tmpl.slides {
		if !kept[idx] {
			dropped = append(dropped, s)
		}
	}
	if len(dropped) == 0 {
		return nil
	}

	orphaned := make(map[string]bool)
	for _, s := range dropped {
		for m := range r.slideMedia(s) {
			orphaned[m] = true
		}
	}
	for idx := range kept {
		for m := range r.slideMedia(r.tmpl.slides[idx]) {
			delete(orphaned, m)
		}
	}

	presDoc, err := r.parsePart(presentationPart)
	if err != nil {
		return err
	}
	lst := presDoc.FindElement("//p:sldIdLst")
	if lst == nil {
		return &types.RenderError{Reason: presentationPart + " has no sldIdLst"}
	}
	for _, child := range lst.ChildElements() {
		lst.RemoveChild(child)
	}
	for _, idx := range keep {
		s := r.tmpl.slides[idx]
		sld := lst.CreateElement("p:sldId")
		sld.CreateAttr("id", s.id)
		sld.CreateAttr("r:id", s.rID)
	}
	if err := r.writePart(presentationPart, presDoc); err != nil {
		return err
	}

	relDoc, err := r.parsePart(presentationRels)
	if err != nil {
		return err
	}
	for _, s := range dropped {
		if rel := relDoc.FindElement(fmt.Sprintf("//Relationship[@Id='%s']", s.rID)); rel != nil {
			rel.Parent().RemoveChild(rel)
		}
	}
	if err := r.writePart(presentationRels, relDoc); err != nil {
		return err
	}

	ctDoc, err := r.parsePart(contentTypesPart)
	if err != nil {
		return err
	}
	for _, s := range dropped {
		if ov := ctDoc.FindElement(fmt.Sprintf("//Override[@PartName='/%s']", s.part)); ov != nil {
			ov.Parent().RemoveChild(ov)
		}
	}
	if err := r.writePart(contentTypesPart, ctDoc); err != nil {
		return err
	}

	for _, s := range dropped {
		r.removePart(s.part)
		r.removePart(relsPartFor(s.part))
	}
	for m := range orphaned {
		r.removePart(m)
	}
	return nil
}

// slideMedia lists the ppt/media parts a slide's relationships reference.
// Media may be shared across slides, so a part is only droppable once no
// surviving slide mentions it.
func (r *render) slideMedia(s slideRef) map[string]bool {
	data, ok := r.parts[relsPartFor(s.part)]
	if !ok {
		return nil
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil
	}
	out := make(map[string]bool)
	for _, rel := range doc.FindElements("//Relationship") {
		target := rel.SelectAttrValue("Target", "")
		if target == "" {
			continue
		}
		part := resolvePartName(path.Dir(s.part), target)
		if strings.HasPrefix(part, "ppt/media/") {
			out[part] = true
		}
	}
	return out
}

// substituteSlide applies text and image substitution to one slide part.
func (r *render) substituteSlide(s slideRef, values types.PlaceholderMap) error {
	doc, err := r.parsePart(s.part)
	if err != nil {
		return err
	}

	changed := substituteText(doc.Root(), values)
	imgChanged, err := r.substituteImages(s, doc.Root(), values)
	if err != nil {
		return err
	}
	if !changed && !imgChanged {
		return nil
	}
	return r.writePart(s.part, doc)
}

// substituteText rewrites {{token}} occurrences in every paragraph under
// root. Returns whether anything changed.
func substituteText(root *etree.Element, values types.PlaceholderMap) bool {
	lookup := func(token string) (string, bool) {
		v, ok := values[token]
		if !ok || v.Kind != types.ValueText {
			return "", false
		}
		return v.Text, true
	}

	changed := false
	for _, para := range findAll(root, "a", "p") {
		texts := findAll(para, "a", "t")
		if len(texts) == 0 {
			continue
		}
		runs := make([]string, len(texts))
		for i, el := range texts {
			runs[i] = el.Text()
		}
		replaced, did := SubstituteRuns(runs, lookup)
		if !did {
			continue
		}
		for i, el := range texts {
			el.SetText(replaced[i])
		}
		changed = true
	}
	return changed
}

// substituteImages handles <p:pic> shapes whose name or descr matches an
// image placeholder key: the picture's blip is repointed at a freshly added
// media part, scaled to fit the shape's original extent. A key whose value
// carries no bytes removes the shape, leaving the slide blank there.
func (r *render) substituteImages(s slideRef, root *etree.Element, values types.PlaceholderMap) (bool, error) {
	changed := false
	for _, pic := range findAll(root, "p", "pic") {
		cNvPr := pic.FindElement("p:nvPicPr/p:cNvPr")
		if cNvPr == nil {
			continue
		}
		value, ok := imageValueFor(values, cNvPr.SelectAttrValue("name", ""), cNvPr.SelectAttrValue("descr", ""))
		if !ok {
			continue
		}

		if len(value.Image) == 0 {
			pic.Parent().RemoveChild(pic)
			changed = true
			continue
		}

		rID, err := r.addMedia(s, value.Image, value.ImageFormat)
		if err != nil {
			return false, err
		}
		blip := pic.FindElement("p:blipFill/a:blip")
		if blip == nil {
			continue
		}
		if attr := blip.SelectAttr("r:embed"); attr != nil {
			attr.Value = rID
		} else {
			blip.CreateAttr("r:embed", rID)
		}
		fitShapeToImage(pic, value.Image)
		changed = true
	}
	return changed, nil
}

// imageValueFor matches a shape's name or descr against the placeholder
// map, accepting both bare keys and their braced {{key}} spelling.
func imageValueFor(values types.PlaceholderMap, name, descr string) (types.PlaceholderValue, bool) {
	for _, candidate := range []string{name, descr} {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimSuffix(strings.TrimPrefix(candidate, tokenOpen), tokenClose)
		if candidate == "" {
			continue
		}
		if v, ok := values[candidate]; ok && v.Kind == types.ValueImage {
			return v, true
		}
	}
	return types.PlaceholderValue{}, false
}

// fitShapeToImage rescales the pic's extent to the image's aspect ratio,
// fitted and centered inside the original extent. Failure to decode the
// image leaves the original extent alone.
func fitShapeToImage(pic *etree.Element, img []byte) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return
	}
	xfrm := pic.FindElement("p:spPr/a:xfrm")
	if xfrm == nil {
		return
	}
	off := xfrm.FindElement("a:off")
	ext := xfrm.FindElement("a:ext")
	if off == nil || ext == nil {
		return
	}
	cx, errX := strconv.ParseFloat(ext.SelectAttrValue("cx", ""), 64)
	cy, errY := strconv.ParseFloat(ext.SelectAttrValue("cy", ""), 64)
	x, errOX := strconv.ParseFloat(off.SelectAttrValue("x", ""), 64)
	y, errOY := strconv.ParseFloat(off.SelectAttrValue("y", ""), 64)
	if errX != nil || errY != nil || errOX != nil || errOY != nil {
		return
	}

	w, h, dx, dy := assets.FitRect(float64(cfg.Width), float64(cfg.Height), cx, cy)
	if w <= 0 || h <= 0 {
		return
	}
	setEMU := func(el *etree.Element, attr string, v float64) {
		el.RemoveAttr(attr)
		el.CreateAttr(attr, strconv.FormatInt(int64(v), 10))
	}
	setEMU(ext, "cx", w)
	setEMU(ext, "cy", h)
	setEMU(off, "x", x+dx)
	setEMU(off, "y", y+dy)
}

// addMedia stores image bytes as a new media part and registers it in the
// slide's relationships, returning the relationship id to embed.
func (r *render) addMedia(s slideRef, data []byte, format string) (string, error) {
	ext := "png"
	mime := "image/png"
	if format == "jpeg" {
		ext, mime = "jpeg", "image/jpeg"
	}

	var name string
	for {
		r.media++
		name = fmt.Sprintf("ppt/media/logo%d.%s", r.media, ext)
		if _, taken := r.parts[name]; !taken {
			break
		}
	}
	r.parts[name] = data
	r.names = append(r.names, name)
	r.exts[ext] = mime

	relsName := relsPartFor(s.part)
	relDoc, err := r.parsePart(relsName)
	if err != nil {
		return "", err
	}
	root := relDoc.Root()
	if root == nil {
		return "", &types.RenderError{Reason: relsName + " has no root element"}
	}
	maxID := 0
	for _, rel := range root.ChildElements() {
		id := rel.SelectAttrValue("Id", "")
		if n, err := strconv.Atoi(strings.TrimPrefix(id, "rId")); err == nil && n > maxID {
			maxID = n
		}
	}
	rID := fmt.Sprintf("rId%d", maxID+1)
	rel := root.CreateElement("Relationship")
	rel.CreateAttr("Id", rID)
	rel.CreateAttr("Type", imageRelType)
	rel.CreateAttr("Target", "../media/"+strings.TrimPrefix(name, "ppt/media/"))
	if err := r.writePart(relsName, relDoc); err != nil {
		return "", err
	}
	return rID, nil
}

// ensureContentTypes adds Default extension entries for any image formats
// introduced during rendering.
func (r *render) ensureContentTypes() error {
	if len(r.exts) == 0 {
		return nil
	}
	doc, err := r.parsePart(contentTypesPart)
	if err != nil {
		return err
	}
	root := doc.Root()
	if root == nil {
		return &types.RenderError{Reason: contentTypesPart + " has no root element"}
	}
	for ext, mime := range r.exts {
		if doc.FindElement(fmt.Sprintf("//Default[@Extension='%s']", ext)) != nil {
			continue
		}
		def := root.CreateElement("Default")
		def.CreateAttr("Extension", ext)
		def.CreateAttr("ContentType", mime)
	}
	return r.writePart(contentTypesPart, doc)
}

func (r *render) parsePart(name string) (*etree.Document, error) {
	data, ok := r.parts[name]
	if !ok {
		return nil, &types.RenderError{Reason: "template has no " + name}
	}
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, &types.RenderError{Reason: "parsing " + name, Err: err}
	}
	return doc, nil
}

func (r *render) writePart(name string, doc *etree.Document) error {
	data, err := doc.WriteToBytes()
	if err != nil {
		return &types.RenderError{Reason: "serializing " + name, Err: err}
	}
	r.parts[name] = data
	return nil
}

func (r *render) removePart(name string) {
	if _, ok := r.parts[name]; !ok {
		return
	}
	delete(r.parts, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
}

// pack writes the parts back into a zip in stable archive order.
func (r *render) pack() ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range r.names {
		w, err := zw.Create(name)
		if err != nil {
			return nil, &types.RenderError{Reason: "packing " + name, Err: err}
		}
		if _, err := w.Write(r.parts[name]); err != nil {
			return nil, &types.RenderError{Reason: "packing " + name, Err: err}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &types.RenderError{Reason: "finalizing archive", Err: err}
	}
	return buf.Bytes(), nil
}

// findAll collects root's descendant elements with the given namespace
// prefix and tag, in document order.
func findAll(root *etree.Element, space, tag string) []*etree.Element {
	var out []*etree.Element
	var walk func(el *etree.Element)
	walk = func(el *etree.Element) {
		if el.Space == space && el.Tag == tag {
			out = append(out, el)
		}
		for _, c := range el.ChildElements() {
			walk(c)
		}
	}
	if root != nil {
		for _, c := range root.ChildElements() {
			walk(c)
		}
	}
	return out
}

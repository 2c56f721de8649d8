// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pptx reads a .pptx deck template, drops the slide groups a
// presentation type does not use, and substitutes {{token}} text and named
// picture placeholders. A .pptx file is a zip of OOXML parts; this package
// edits the XML with etree and repacks the archive, leaving everything it
// does not understand byte-for-byte intact.
package pptx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/beevik/etree"

	"github.com/pdiddy/casedeck/pkg/types"
)

const (
	presentationPart = "ppt/presentation.xml"
	presentationRels = "ppt/_rels/presentation.xml.rels"
	contentTypesPart = "[Content_Types].xml"

	imageRelType = "http://schemas.openxmlformats.org/officeDocument/2006/relationships/image"
)

// slideRef is one entry of the presentation's slide list, in show order.
type slideRef struct {
	id   string // p:sldId id attribute
	rID  string // relationship id into presentation.xml.rels
	part string // zip name of the slide part, e.g. ppt/slides/slide1.xml
}

// Template is an immutable, fully in-memory .pptx. Rendering copies; a
// single Template serves concurrent renders.
type Template struct {
	names  []string          // zip entry names in archive order
	parts  map[string][]byte // entry name -> raw bytes
	slides []slideRef        // ordered slide list
	groups map[types.PresentationType][]int
}

// DefaultSlideGroups maps each presentation type to the template slide
// indices that make up its group. The stock template carries the four-case
// overview first, then the two-case slide, then the single-case slide.
func DefaultSlideGroups() map[types.PresentationType][]int {
	return map[types.PresentationType][]int{
		types.PresentationFour: {0},
		types.PresentationTwo:  {1},
		types.PresentationOne:  {2},
	}
}

// OpenTemplate reads and parses a .pptx file.
func OpenTemplate(path string) (*Template, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &types.RenderError{Reason: "reading template", Err: err}
	}
	return OpenTemplateBytes(raw)
}

// OpenTemplateBytes parses .pptx bytes into a Template.
func OpenTemplateBytes(raw []byte) (*Template, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, &types.RenderError{Reason: "template is not a zip archive", Err: err}
	}

	t := &Template{
		parts:  make(map[string][]byte, len(zr.File)),
		groups: DefaultSlideGroups(),
	}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			return nil, &types.RenderError{Reason: "reading template part " + f.Name, Err: err}
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, &types.RenderError{Reason: "reading template part " + f.Name, Err: err}
		}
		t.names = append(t.names, f.Name)
		t.parts[f.Name] = data
	}

	if err := t.parseSlideList(); err != nil {
		return nil, err
	}
	return t, nil
}

// SlideCount returns the number of slides in the template's show order.
func (t *Template) SlideCount() int { return len(t.slides) }

// parseSlideList resolves presentation.xml's sldIdLst through the
// presentation relationships into ordered slide part names.
func (t *Template) parseSlideList() error {
	pres, ok := t.parts[presentationPart]
	if !ok {
		return &types.RenderError{Reason: "template has no " + presentationPart}
	}
	rels, ok := t.parts[presentationRels]
	if !ok {
		return &types.RenderError{Reason: "template has no " + presentationRels}
	}

	relDoc := etree.NewDocument()
	if err := relDoc.ReadFromBytes(rels); err != nil {
		return &types.RenderError{Reason: "parsing presentation relationships", Err: err}
	}
	targets := make(map[string]string)
	for _, rel := range relDoc.FindElements("//Relationship") {
		targets[rel.SelectAttrValue("Id", "")] = rel.SelectAttrValue("Target", "")
	}

	presDoc := etree.NewDocument()
	if err := presDoc.ReadFromBytes(pres); err != nil {
		return &types.RenderError{Reason: "parsing " + presentationPart, Err: err}
	}
	for _, sld := range presDoc.FindElements("//p:sldIdLst/p:sldId") {
		rID := sld.SelectAttrValue("r:id", "")
		target := targets[rID]
		if target == "" {
			return &types.RenderError{Reason: fmt.Sprintf("slide relationship %q is unresolved", rID)}
		}
		t.slides = append(t.slides, slideRef{
			id:   sld.SelectAttrValue("id", ""),
			rID:  rID,
			part: resolvePartName("ppt", target),
		})
	}
	if len(t.slides) == 0 {
		return &types.RenderError{Reason: "template has no slides"}
	}
	return nil
}

// keepIndices returns the template slide indices a presentation type keeps,
// in output order. Type 0 concatenates all groups in canonical order
// (overview, two-case, single-case). Indices beyond the template's actual
// slide count are skipped so a shorter template still renders.
func (t *Template) keepIndices(ptype types.PresentationType) []int {
	order := []types.PresentationType{ptype}
	if ptype == types.PresentationAll {
		order = []types.PresentationType{types.PresentationFour, types.PresentationTwo, types.PresentationOne}
	}

	var keep []int
	for _, g := range order {
		for _, idx := range t.groups[g] {
			if idx >= 0 && idx < len(t.slides) {
				keep = append(keep, idx)
			}
		}
	}
	return keep
}

// resolvePartName resolves a relationship target (relative to base) into a
// zip entry name, e.g. ("ppt", "slides/slide1.xml") -> "ppt/slides/slide1.xml".
func resolvePartName(base, target string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(target, "/")
	}
	return path.Clean(path.Join(base, target))
}

// relsPartFor returns the relationships part name for an OOXML part, e.g.
// "ppt/slides/slide1.xml" -> "ppt/slides/_rels/slide1.xml.rels".
func relsPartFor(part string) string {
	return path.Join(path.Dir(part), "_rels", path.Base(part)+".rels")
}

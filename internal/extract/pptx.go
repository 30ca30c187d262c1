package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var slidePathRe = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// extractPPTX reads slide XML parts straight out of the zip container and
// collects every a:t text run. Each slide opens under a [Slide N] tag so
// the segmenter keeps slides apart.
func extractPPTX(_ context.Context, name string, data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}

	type slide struct {
		num  int
		file *zip.File
	}
	var slides []slide
	for _, f := range zr.File {
		m := slidePathRe.FindStringSubmatch(f.Name)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		slides = append(slides, slide{num: n, file: f})
	}
	sort.Slice(slides, func(i, j int) bool { return slides[i].num < slides[j].num })

	var b strings.Builder
	for _, s := range slides {
		runs, err := slideTextRuns(s.file)
		if err != nil {
			return "", fmt.Errorf("extract %s slide %d: %w", name, s.num, err)
		}
		if len(runs) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("[Slide %d]\n", s.num))
		for _, run := range runs {
			b.WriteString(run)
			b.WriteString("\n")
		}
	}
	return b.String(), nil
}

func slideTextRuns(f *zip.File) ([]string, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var runs []string
	inText := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				if s := strings.TrimSpace(string(t)); s != "" {
					runs = append(runs, s)
				}
			}
		}
	}
	return runs, nil
}

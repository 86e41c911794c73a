package browser

import (
	"fmt"
	"time"

	"github.com/go-rod/rod"
)

// probeTimeout bounds each lookup made while walking the frame tree.
const probeTimeout = 500 * time.Millisecond

// FrameInfo describes one document in the frame tree.
type FrameInfo struct {
	// Path is a readable location such as "main > iframe#checkout".
	Path string
	// Selector matches the iframe element inside its parent document. Only
	// direct children of the top page can be passed to ResolveFrame.
	Selector string
	Src      string
	Depth    int
	Visible  bool
	// Controls counts the input, select and textarea elements of the frame.
	Controls int
	// Err is set when the frame content could not be reached.
	Err error
}

// FrameTree lists the top document and every nested iframe, depth first.
func FrameTree(page *rod.Page) ([]FrameInfo, error) {
	top := FrameInfo{Path: "main", Visible: true}
	n, err := countControls(page)
	if err != nil {
		return nil, fmt.Errorf("count controls: %w", err)
	}
	top.Controls = n

	out := []FrameInfo{top}
	return walkFrames(page, top.Path, 1, out), nil
}

func walkFrames(page *rod.Page, path string, depth int, out []FrameInfo) []FrameInfo {
	iframes, err := page.Timeout(probeTimeout).Elements("iframe")
	if err != nil {
		return out
	}

	for i, iframe := range iframes {
		info := FrameInfo{
			Selector: iframeSelector(iframe, i),
			Src:      attrOrEmpty(iframe, "src"),
			Depth:    depth,
		}
		info.Path = path + " > " + info.Selector
		info.Visible, _ = iframe.Visible()

		frame, err := iframe.Frame()
		if err != nil {
			info.Err = fmt.Errorf("cannot access frame: %w", err)
			out = append(out, info)
			continue
		}

		info.Controls, info.Err = countControls(frame)
		out = append(out, info)
		out = walkFrames(frame, info.Path, depth+1, out)
	}
	return out
}

func countControls(page *rod.Page) (int, error) {
	res, err := page.Timeout(probeTimeout).Eval(`() => document.querySelectorAll('` + controlsSelector + `').length`)
	if err != nil {
		return 0, err
	}
	return res.Value.Int(), nil
}

func iframeSelector(iframe *rod.Element, index int) string {
	if id := attrOrEmpty(iframe, "id"); id != "" {
		return "iframe#" + id
	}
	if name := attrOrEmpty(iframe, "name"); name != "" {
		return fmt.Sprintf("iframe[name=%q]", name)
	}
	if src := attrOrEmpty(iframe, "src"); src != "" {
		return fmt.Sprintf("iframe[src=%q]", src)
	}
	return fmt.Sprintf("iframe:nth-of-type(%d)", index+1)
}

func attrOrEmpty(el *rod.Element, name string) string {
	v, err := el.Attribute(name)
	if err != nil || v == nil {
		return ""
	}
	return *v
}

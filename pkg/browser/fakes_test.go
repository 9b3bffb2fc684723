package browser

import "fmt"

// fakeElement implements Element for tests.
type fakeElement struct {
	visible    bool
	text       string
	attrs      map[string]string
	visibleErr error
	textErr    error
}

func (e *fakeElement) Visible() (bool, error) {
	if e.visibleErr != nil {
		return false, e.visibleErr
	}
	return e.visible, nil
}

func (e *fakeElement) Text() (string, error) {
	if e.textErr != nil {
		return "", e.textErr
	}
	return e.text, nil
}

func (e *fakeElement) Attribute(name string) (string, error) {
	return e.attrs[name], nil
}

// fakePage implements Page for tests. The onOp hook runs after every
// mutating operation so tests can make the page change mid-sequence, e.g. a
// CAPTCHA appearing after a click.
type fakePage struct {
	url        string
	elements   map[string][]*fakeElement
	queryErr   map[string]error
	waitErr    map[string]error
	gotoErr    map[string]error
	filled     map[string]string
	clicked    []string
	screenshot []byte
	shotErr    error
	content    string
	ops        []string
	onOp       func(p *fakePage, op string)
}

func newFakePage(url string) *fakePage {
	return &fakePage{
		url:      url,
		elements: make(map[string][]*fakeElement),
		queryErr: make(map[string]error),
		waitErr:  make(map[string]error),
		gotoErr:  make(map[string]error),
		filled:   make(map[string]string),
	}
}

func (p *fakePage) record(op string) {
	p.ops = append(p.ops, op)
	if p.onOp != nil {
		p.onOp(p, op)
	}
}

func (p *fakePage) Goto(url string, timeout float64) error {
	p.record("goto:" + url)
	if err := p.gotoErr[url]; err != nil {
		return err
	}
	p.url = url
	return nil
}

func (p *fakePage) URL() string { return p.url }

func (p *fakePage) Fill(selector, value string, timeout float64) error {
	p.record(fmt.Sprintf("fill:%s=%s", selector, value))
	if err := p.waitErr[selector]; err != nil {
		return err
	}
	p.filled[selector] = value
	return nil
}

func (p *fakePage) Click(selector string, timeout float64) error {
	p.record("click:" + selector)
	if err := p.waitErr[selector]; err != nil {
		return err
	}
	p.clicked = append(p.clicked, selector)
	return nil
}

func (p *fakePage) WaitForSelector(selector string, timeout float64) error {
	p.record("wait:" + selector)
	return p.waitErr[selector]
}

func (p *fakePage) WaitForLoad(timeout float64) error { return nil }

func (p *fakePage) Query(selector string) (Element, error) {
	if err := p.queryErr[selector]; err != nil {
		return nil, err
	}
	matches := p.elements[selector]
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (p *fakePage) QueryAll(selector string) ([]Element, error) {
	if err := p.queryErr[selector]; err != nil {
		return nil, err
	}
	matches := p.elements[selector]
	elements := make([]Element, 0, len(matches))
	for _, m := range matches {
		elements = append(elements, m)
	}
	return elements, nil
}

func (p *fakePage) Screenshot() ([]byte, error) {
	if p.shotErr != nil {
		return nil, p.shotErr
	}
	return p.screenshot, nil
}

func (p *fakePage) Content() (string, error) { return p.content, nil }

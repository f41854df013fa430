package browser

import (
	"encoding/json"
	"fmt"
)

// QuestionAttr marks collected elements so later actions can address them.
const QuestionAttr = "data-survey-q"

type HTMLMode string

const (
	InnerHTML HTMLMode = "inner"
	OuterHTML HTMLMode = "outer"
)

// Rule tells Collect which elements to pick up and how to render them.
type Rule struct {
	Kind     string   `json:"kind"`
	Selector string   `json:"selector"`
	HTML     HTMLMode `json:"html"`
}

// Element is a collected element. X and Y are document coordinates.
type Element struct {
	ID   string  `json:"id"`
	Kind string  `json:"kind"`
	HTML string  `json:"html"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

func (e Element) Ref() string {
	return fmt.Sprintf(`[%s="%s"]`, QuestionAttr, e.ID)
}

const (
	scrollByViewportScript = `window.scrollBy(0, window.innerHeight);`
	scrollOffsetScript     = `window.pageYOffset`
)

// First matching rule wins, so an element is reported once.
const collectTemplate = `(() => {
	const rules = %s;
	const attr = %q;
	document.querySelectorAll('[' + attr + ']').forEach(el => el.removeAttribute(attr));

	const seen = new Set();
	const out = [];
	let counter = 0;
	for (const rule of rules) {
		for (const el of document.querySelectorAll(rule.selector)) {
			if (seen.has(el)) continue;
			seen.add(el);

			const id = String(counter++);
			el.setAttribute(attr, id);
			const rect = el.getBoundingClientRect();
			out.push({
				id: id,
				kind: rule.kind,
				html: rule.html === 'outer' ? el.outerHTML : el.innerHTML,
				x: rect.left + window.scrollX,
				y: rect.top + window.scrollY,
			});
		}
	}
	return out;
})()`

func collectScript(rules []Rule) (string, error) {
	raw, err := json.Marshal(rules)
	if err != nil {
		return "", fmt.Errorf("encode rules: %w", err)
	}
	return fmt.Sprintf(collectTemplate, raw, QuestionAttr), nil
}

// selectOptionFunc runs with `this` bound to a <select>.
const selectOptionFunc = `function() {
	const value = %s;
	const opt = Array.from(this.options || []).find(o => o.value === value);
	if (!opt) return false;
	if (this.scrollIntoViewIfNeeded) {
		this.scrollIntoViewIfNeeded();
	}
	opt.selected = true;
	this.value = value;
	this.dispatchEvent(new Event('input', { bubbles: true }));
	this.dispatchEvent(new Event('change', { bubbles: true }));
	return true;
}`

func selectScript(value string) string {
	raw, _ := json.Marshal(value)
	return fmt.Sprintf(selectOptionFunc, raw)
}

// optionSelector matches the <option> with the given value inside selector.
func optionSelector(selector, value string) string {
	raw, _ := json.Marshal(value)
	return fmt.Sprintf("%s option[value=%s]", selector, raw)
}

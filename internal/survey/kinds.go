package survey

import (
	"cmp"
	"slices"

	"github.com/nbenliogludev/go-survey-agent/internal/browser"
)

type Kind string

const (
	KindCBCTask        Kind = "cbc_task"
	KindSelect         Kind = "select"
	KindNumeric        Kind = "numeric"
	KindResponseColumn Kind = "response_column"
	KindTextarea       Kind = "textarea"
)

type replyType int

const (
	replyChoice replyType = iota
	replyText
)

type questionType struct {
	kind     Kind
	selector string
	html     browser.HTMLMode
	reply    replyType
}

// Detection order matters: an element matching several selectors takes the first kind.
var questionTypes = []questionType{
	{KindCBCTask, ".cbc_task", browser.InnerHTML, replyChoice},
	{KindSelect, "select", browser.OuterHTML, replyChoice},
	{KindNumeric, ".question.numeric", browser.OuterHTML, replyText},
	{KindResponseColumn, ".response_column", browser.InnerHTML, replyChoice},
	{KindTextarea, "textarea", browser.InnerHTML, replyText},
}

const taskSelectButton = ".task_select_button"

// Rules returns the collection rules for every supported question kind.
func Rules() []browser.Rule {
	rules := make([]browser.Rule, 0, len(questionTypes))
	for _, qt := range questionTypes {
		rules = append(rules, browser.Rule{
			Kind:     string(qt.kind),
			Selector: qt.selector,
			HTML:     qt.html,
		})
	}
	return rules
}

func lookupType(kind Kind) (questionType, bool) {
	for _, qt := range questionTypes {
		if qt.kind == kind {
			return qt, true
		}
	}
	return questionType{}, false
}

// SortQuestions orders elements top to bottom, then left to right.
func SortQuestions(elems []browser.Element) []browser.Element {
	out := slices.Clone(elems)
	slices.SortStableFunc(out, func(a, b browser.Element) int {
		if c := cmp.Compare(a.Y, b.Y); c != 0 {
			return c
		}
		return cmp.Compare(a.X, b.X)
	})
	return out
}

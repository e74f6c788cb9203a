package scraper

// clearInputJS empties an input and fires the events frameworks listen to, so controlled
// inputs drop their state as well. Called with the node as `this`.
const clearInputJS = `function() {
	const setter = Object.getOwnPropertyDescriptor(HTMLInputElement.prototype, 'value')?.set;
	if (setter) { setter.call(this, ''); } else { this.value = ''; }
	this.dispatchEvent(new Event('input', { bubbles: true }));
	this.dispatchEvent(new Event('change', { bubbles: true }));
}`

// bodyTextJS returns the rendered text of the page.
const bodyTextJS = `document.body ? document.body.innerText : ""`

// textXPath builds an XPath that matches elements owning a text node containing text.
func textXPath(text string) string {
	return `//*[text()[contains(., ` + xpathLiteral(text) + `)]]`
}

// xpathLiteral quotes s for XPath 1.0, which has no escape sequences.
func xpathLiteral(s string) string {
	hasSingle, hasDouble := false, false
	for _, r := range s {
		switch r {
		case '\'':
			hasSingle = true
		case '"':
			hasDouble = true
		}
	}
	switch {
	case !hasDouble:
		return `"` + s + `"`
	case !hasSingle:
		return `'` + s + `'`
	}
	out := "concat("
	part := ""
	for _, r := range s {
		if r == '"' {
			if part != "" {
				out += `"` + part + `",`
				part = ""
			}
			out += `'"',`
			continue
		}
		part += string(r)
	}
	if part != "" {
		out += `"` + part + `",`
	}
	return out[:len(out)-1] + ")"
}

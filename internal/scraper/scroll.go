package scraper

import (
	"fmt"
	"time"
)

const (
	defaultScrollStep     = 500
	defaultScrollInterval = 100 * time.Millisecond
)

// scrollScript builds a promise that scrolls the document down in fixed steps
// until the scrolled distance covers the body height, then returns to the top.
// It resolves to true so the evaluation has a value to decode.
func scrollScript(step int, interval time.Duration) string {
	if step <= 0 {
		step = defaultScrollStep
	}
	if interval <= 0 {
		interval = defaultScrollInterval
	}
	return fmt.Sprintf(`new Promise((resolve) => {
	let scrolled = 0;
	const timer = setInterval(() => {
		const height = document.body ? document.body.scrollHeight : 0;
		window.scrollBy(0, %d);
		scrolled += %d;
		if (scrolled >= height) {
			clearInterval(timer);
			window.scrollTo(0, 0);
			resolve(true);
		}
	}, %d);
})`, step, step, interval.Milliseconds())
}

// documentScript serializes the live DOM, doctype included.
const documentScript = `(() => {
	const dt = document.doctype;
	const doctype = dt ? "<!DOCTYPE " + dt.name +
		(dt.publicId ? ' PUBLIC "' + dt.publicId + '"' : "") +
		(dt.systemId ? ' "' + dt.systemId + '"' : "") + ">" : "";
	return doctype + document.documentElement.outerHTML;
})()`

// Package dom parses HTML documents and evaluates CSS selectors against them.
//
// It is a thin layer over github.com/PuerkitoBio/goquery for parsing and
// matching, with selectors compiled up front by github.com/andybalholm/cascadia
// so that malformed selectors are reported instead of silently matching
// nothing.
//
// # Usage
//
//	doc, err := dom.Parse(strings.NewReader(`<h1 id="title">Hi</h1>`))
//	if err != nil {
//	    return err
//	}
//	n, err := doc.Count("h1#title") // n == 1
package dom

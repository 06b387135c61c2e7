// Package html provides a Normaliser implementation for HTML documents and
// fetched web pages. It walks the DOM, drops page chrome (scripts, styles,
// navigation, headers and footers) and flattens the remaining text to a
// single whitespace-collapsed line. Pages that look like client-rendered
// applications are flagged in metadata.
package html

// Package render turns an artwork into gradient, wall and transparent preview
// images through an injected rendering backend and sink.
package render

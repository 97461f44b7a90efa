// Package html provides a Normaliser for HTML knowledge pages. It extracts
// readable text, dropping scripts, styles and markup, and decodes entities.
package html

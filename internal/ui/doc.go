// Package ui holds the color themes of the terminal output. Tables, the
// progress line and the execution summary read their colors from the
// current theme, which NO_COLOR or -no-color turns off.
package ui

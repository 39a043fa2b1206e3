// Package binder provides request binders for handler.Wrap: JSON decodes a
// strict JSON body and Path reads router path parameters into tagged fields.
package binder

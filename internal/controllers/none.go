package controllers

import "github.com/san-kum/resonance/internal/dynamo"

// None leaves the parameter record untouched.
type None struct{}

func NewNone() *None { return &None{} }

func (n *None) Compute(*dynamo.State, int, *dynamo.Params) {}

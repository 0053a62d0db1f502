// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/AleutianAI/AleutianSocial/services/social/graph"
	"github.com/AleutianAI/AleutianSocial/services/social/probabilistic"
)

// configValidate reports fields by their yaml names.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	configValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("yaml"), ",")
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
}

// Validate checks every field constraint and reports all failures at once.
func (c *Config) Validate() error {
	err := configValidate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.TrimPrefix(fe.Namespace(), "Config.")
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", field, fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
}

// BuildSocial creates a friendship graph from Connections.
func (c *Config) BuildSocial() *graph.Social[string] {
	edges := make([]graph.Edge[string], 0, len(c.Connections))
	for _, pair := range c.Connections {
		if len(pair) != 2 {
			continue
		}
		edges = append(edges, graph.Edge[string]{A: pair[0], B: pair[1]})
	}
	return graph.BuildFromEdges(edges)
}

// BuildLinks creates a link graph from Links.
func (c *Config) BuildLinks(opts ...probabilistic.Option) (*probabilistic.Links[string], error) {
	l := probabilistic.New[string](opts...)
	for _, link := range c.Links {
		if err := l.AddEdge(link.From, link.To, link.Probability); err != nil {
			return nil, err
		}
	}
	return l, nil
}

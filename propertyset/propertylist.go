package propertyset

import (
	"reflect"
	"slices"
)

// PropertyList is a PropertySet that keeps names in the order they were
// first added, with a comment per name.
type PropertyList struct {
	set      *PropertySet
	order    []string
	comments map[string]string
}

// NewList returns an empty PropertyList.
func NewList() *PropertyList {
	return &PropertyList{set: New(), comments: make(map[string]string)}
}

// Names returns the names in insertion order.
func (l *PropertyList) Names() []string {
	return slices.Clone(l.order)
}

func (l *PropertyList) Len() int { return l.set.Len() }
func (l *PropertyList) Exists(name string) bool { return l.set.Exists(name) }
func (l *PropertyList) TypeOf(name string) reflect.Type { return l.set.TypeOf(name) }
func (l *PropertyList) IsArray(name string) bool { return l.set.IsArray(name) }
func (l *PropertyList) ValueCount(name string) int { return l.set.ValueCount(name) }
func (l *PropertyList) Array(name string) any { return l.set.Array(name) }
func (l *PropertyList) Comment(name string) string { return l.comments[name] }

// Add appends value under name, keeping any existing comment.
func (l *PropertyList) Add(name string, value any) error {
	return l.AddWithComment(name, value, l.comments[name])
}

// AddWithComment appends value under name and sets its comment.
func (l *PropertyList) AddWithComment(name string, value any, comment string) error {
	existed := l.set.Exists(name)
	if err := l.set.Add(name, value); err != nil {
		return err
	}
	if !existed {
		l.order = append(l.order, name)
	}
	l.comments[name] = comment
	return nil
}

// Set replaces the values under name, keeping its position and comment.
func (l *PropertyList) Set(name string, value any) error {
	return l.SetWithComment(name, value, l.comments[name])
}

// SetWithComment replaces the values and comment under name.
func (l *PropertyList) SetWithComment(name string, value any, comment string) error {
	existed := l.set.Exists(name)
	if err := l.set.Set(name, value); err != nil {
		return err
	}
	if !existed {
		l.order = append(l.order, name)
	}
	l.comments[name] = comment
	return nil
}

// Remove deletes name, its values and its comment.
func (l *PropertyList) Remove(name string) {
	if !l.set.Exists(name) {
		return
	}
	l.set.Remove(name)
	delete(l.comments, name)
	l.order = slices.DeleteFunc(l.order, func(n string) bool { return n == name })
}

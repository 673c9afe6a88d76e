package layout

import (
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// measureFace is the reference face; its 13px line height is scaled to the
// requested font size.
var measureFace = basicfont.Face7x13

const measureFaceSize = 13

type textKey struct {
	s    string
	size float64
}

// TextCache memoizes text widths. Axis labels repeat on every configuring
// pass, so the same strings are measured over and over.
// It is safe for concurrent use.
type TextCache struct {
	mu      sync.RWMutex
	entries map[textKey]float64
}

// NewTextCache creates an empty cache.
func NewTextCache() *TextCache {
	return &TextCache{entries: make(map[textKey]float64)}
}

// Width returns the width of s at fontSize pixels.
func (c *TextCache) Width(s string, fontSize float64) float64 {
	k := textKey{s, fontSize}
	c.mu.RLock()
	w, ok := c.entries[k]
	c.mu.RUnlock()
	if ok {
		return w
	}
	w = measure(s, fontSize)
	c.mu.Lock()
	c.entries[k] = w
	c.mu.Unlock()
	return w
}

// Len returns the number of cached entries.
func (c *TextCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Invalidate clears all cached entries.
func (c *TextCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[textKey]float64)
	c.mu.Unlock()
}

var defaultTextCache = NewTextCache()

// TextWidth returns the rendered width of s at fontSize pixels.
func TextWidth(s string, fontSize float64) float64 {
	return defaultTextCache.Width(s, fontSize)
}

// MaxTextWidth returns the widest of labels at fontSize.
func MaxTextWidth(labels []string, fontSize float64) float64 {
	var max float64
	for _, l := range labels {
		if w := TextWidth(l, fontSize); w > max {
			max = w
		}
	}
	return max
}

func measure(s string, fontSize float64) float64 {
	adv := font.MeasureString(measureFace, s)
	return float64(adv) / 64 * fontSize / measureFaceSize
}

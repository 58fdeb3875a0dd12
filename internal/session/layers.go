package session

import "sync"

// Layer is an imagery tile layer shown on the map.
type Layer struct {
	AssetID    string
	ItemType   string
	Date       string
	CloudCover float64
	URL        string
}

// Layers keeps the displayed imagery layers, one per asset id.
type Layers struct {
	mu    sync.Mutex
	order []string
	byID  map[string]Layer
}

func NewLayers() *Layers {
	return &Layers{byID: map[string]Layer{}}
}

// Replace swaps the displayed layers for layers and returns those that
// were not displayed before. changed is false when the set is identical.
func (l *Layers) Replace(layers ...Layer) (added []Layer, changed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	prev := l.byID
	l.order = nil
	l.byID = make(map[string]Layer, len(layers))
	for _, layer := range layers {
		if _, ok := l.byID[layer.AssetID]; ok {
			continue
		}
		l.byID[layer.AssetID] = layer
		l.order = append(l.order, layer.AssetID)
		if _, ok := prev[layer.AssetID]; !ok {
			added = append(added, layer)
		}
	}
	return added, len(added) > 0 || len(prev) != len(l.byID)
}

func (l *Layers) List() []Layer {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Layer, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.byID[id])
	}
	return out
}

func (l *Layers) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.order = nil
	l.byID = map[string]Layer{}
}

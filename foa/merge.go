package foa

// Merge moves every element of src whose key is absent from t into t,
// leaving elements with colliding keys behind in src untouched.
func (t *Table[K, V]) Merge(src *Table[K, V]) {
	keys := make([]K, 0, src.Len())
	for it := src.Begin(); it.Valid(); it.Next() {
		keys = append(keys, it.Key())
	}
	for _, key := range keys {
		v, ok := src.Find(key)
		if !ok {
			continue // already moved by an earlier equal key, shouldn't happen for unique keys
		}
		if _, inserted := t.TryEmplace(key, v); inserted {
			src.Erase(key)
		}
	}
}

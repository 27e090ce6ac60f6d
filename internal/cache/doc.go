// Package cache provides the bounded LRU used for rendered previews.
//
//	c := cache.New[key, *image.NRGBA](64)
//	c.Set(k, img)
//	img, ok := c.Get(k)
//
// Entries can be dropped in bulk with RemoveFunc, which is how a drawable
// invalidates every preview size it owns after an edit.
package cache

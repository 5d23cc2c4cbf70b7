package domain

import "slices"

// MergeResult counts what a merge changed in the local list.
type MergeResult struct {
	// Added is the number of remote quotes appended as new entries.
	Added int `json:"added"`

	// Updated is the number of existing local quotes changed by the merge,
	// either by attaching a server ID or by overwriting content.
	Updated int `json:"updated"`

	// Conflicts is the subset of Updated where local content differed
	// and was overwritten by the remote copy.
	Conflicts int `json:"conflicts"`
}

// Changed reports whether the merge touched the local list at all.
func (r MergeResult) Changed() bool {
	return r.Added > 0 || r.Updated > 0
}

// Merge reconciles local quotes with remote quotes using "server wins".
//
// Remote quotes are applied in order. Each one is matched against the local
// list by server ID, then by ID, then by identical text and category among
// quotes that have no server ID yet. Unmatched remote quotes are appended.
// A match with different content takes the remote text and category.
//
// The local slice is not modified; the merged list is returned.
func Merge(local, remote []Quote) ([]Quote, MergeResult) {
	merged := slices.Clone(local)
	var result MergeResult

	for _, r := range remote {
		key := remoteKey(r)

		idx := matchIndex(merged, r, key)
		if idx < 0 {
			merged = append(merged, Quote{
				ID:       remoteID(r, key),
				ServerID: key,
				Text:     r.Text,
				Category: r.Category,
			})
			result.Added++

			continue
		}

		current := &merged[idx]
		changed := false

		if !current.SameContent(r) {
			current.Text = r.Text
			current.Category = r.Category
			result.Conflicts++
			changed = true
		}

		if current.ServerID == "" && key != "" {
			current.ServerID = key
			changed = true
		}

		if changed {
			result.Updated++
		}
	}

	return merged, result
}

// matchIndex locates the local quote a remote quote corresponds to.
// Returns -1 when there is no match.
func matchIndex(local []Quote, r Quote, key string) int {
	if key != "" {
		if i := slices.IndexFunc(local, func(q Quote) bool { return q.ServerID == key }); i >= 0 {
			return i
		}
	}

	if r.ID != "" {
		if i := slices.IndexFunc(local, func(q Quote) bool { return q.ID == r.ID }); i >= 0 {
			return i
		}
	}

	return slices.IndexFunc(local, func(q Quote) bool {
		return !q.Synced() && q.SameContent(r)
	})
}

// remoteKey is the server identity of a remote quote.
func remoteKey(r Quote) string {
	if r.ServerID != "" {
		return r.ServerID
	}

	return r.ID
}

// remoteID is the local ID a newly appended remote quote receives.
func remoteID(r Quote, key string) string {
	if r.ID != "" {
		return r.ID
	}

	return key
}

package domain

// Reconcile merges remote quotes into local ones using id-keyed precedence.
//
// Rules:
//   - Local quotes without an id are kept verbatim in their original positions.
//   - Remote quotes without an id are ignored; they cannot be keyed.
//   - When an id exists on both sides, the remote text and category win.
//   - Ids present only locally are preserved; ids present only remotely are
//     appended in remote order.
//   - Duplicate ids collapse into one record at the first position, last value wins.
//
// The returned count is the number of remote ids that were not present locally.
// Reconcile is pure and idempotent: Reconcile(Reconcile(L, R), R) equals Reconcile(L, R).
func Reconcile(local, remote []Quote) ([]Quote, int) {
	remoteByID := make(map[int64]Quote, len(remote))
	remoteOrder := make([]int64, 0, len(remote))

	for _, r := range remote {
		if !r.HasID() {
			continue
		}

		if _, seen := remoteByID[r.ID]; !seen {
			remoteOrder = append(remoteOrder, r.ID)
		}

		remoteByID[r.ID] = r
	}

	lastLocal := make(map[int64]Quote, len(local))
	for _, q := range local {
		if q.HasID() {
			lastLocal[q.ID] = q
		}
	}

	merged := make([]Quote, 0, len(local)+len(remoteOrder))
	emitted := make(map[int64]struct{}, len(lastLocal)+len(remoteOrder))

	for _, q := range local {
		if !q.HasID() {
			merged = append(merged, q)
			continue
		}

		if _, done := emitted[q.ID]; done {
			continue
		}

		emitted[q.ID] = struct{}{}

		if r, ok := remoteByID[q.ID]; ok {
			merged = append(merged, r)
		} else {
			merged = append(merged, lastLocal[q.ID])
		}
	}

	added := 0

	for _, id := range remoteOrder {
		if _, done := emitted[id]; done {
			continue
		}

		merged = append(merged, remoteByID[id])
		added++
	}

	return merged, added
}

package feed

import "postline/internal/models"

// CommentForm is the draft comment buffer for a single post.
type CommentForm struct {
	Content string
}

// formRegistry maps post IDs to their independent draft comment buffers.
// Every post currently in the feed has exactly one live buffer; buffers are
// created when a post enters the feed and pruned only when a reload no
// longer carries the post.
type formRegistry map[uint]*CommentForm

// sync creates buffers for newly arrived posts and prunes buffers whose
// post is gone. Buffers for surviving posts keep their drafted content.
func (r formRegistry) sync(posts []models.Post) {
	present := make(map[uint]bool, len(posts))
	for _, p := range posts {
		present[p.ID] = true
		if _, ok := r[p.ID]; !ok {
			r[p.ID] = &CommentForm{}
		}
	}
	for id := range r {
		if !present[id] {
			delete(r, id)
		}
	}
}

// Package acl keeps remote APIs from leaking into the quote domain.
//
// Each remote gets an adapter that embeds [BaseAdapter]. Wire types stay
// unexported here; callers only ever see [domain.Quote] values and domain
// errors. Failed calls are classified by [MapHTTPError]:
//
//	404                 domain.ErrNotFound
//	409                 domain.ErrConflict
//	401, 403            domain.ErrForbidden
//	429, 5xx            domain.ErrUnavailable
//	other 4xx           domain.ErrValidation
//	open circuit        domain.ErrUnavailable
//	retries exhausted   domain.ErrUnavailable
//
// [PostsClient] treats a JSON posts API as the remote quote source: a post's
// title becomes the quote text and every fetched quote lands in one
// configured category. It also publishes locally added quotes as new posts.
// The fetch path reads:
//
//	body, err := c.Get(ctx, "/posts", "fetch posts")
//	if err != nil {
//	    return nil, err
//	}
//
//	posts, err := acl.DecodeResponse[[]postDTO](body)
//	if err != nil {
//	    return nil, domain.NewUnavailableError(c.ServiceName(), err.Error())
//	}
//
//	return acl.TranslateSlice(posts, c.toDomain, logSkipped), nil
package acl

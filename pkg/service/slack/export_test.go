package slack

// BuildNotificationBlocks is exported for testing
var BuildNotificationBlocks = buildNotificationBlocks

// LinkURL is exported for testing
func (p *Pusher) LinkURL(link string) string {
	return p.linkURL(link)
}

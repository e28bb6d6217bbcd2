package upstream

import "context"

// Source pairs the filter publisher with the stream so the synchronizer drives both.
type Source struct {
	publisher *FilterPublisher
	stream    *Stream
}

func NewSource(publisher *FilterPublisher, stream *Stream) *Source {
	return &Source{publisher: publisher, stream: stream}
}

func (s *Source) PublishFilter(ctx context.Context, descriptors []string) (string, error) {
	return s.publisher.PublishFilter(ctx, descriptors)
}

func (s *Source) Start(ctx context.Context, handle string) error {
	return s.stream.Start(ctx, handle)
}

func (s *Source) Stop() {
	s.stream.Stop()
}

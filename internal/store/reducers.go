package store

import (
	"maps"

	"ravebox/discover/internal/discover"
	"ravebox/discover/internal/domain"
)

func reduce(s State, action Action) State {
	switch action.Slice() {
	case SliceReview:
		s.Review = reduceReview(s.Review, action)
	case SliceDiscover:
		s.Discover = reduceDiscover(s.Discover, action)
	case SliceVideo:
		s.Video = reduceVideo(s.Video, action)
	case SliceChannel:
		s.Channel = reduceChannel(s.Channel, action)
	case SliceLoading:
		s.Loading = reduceLoading(s.Loading, action)
	}
	return s
}

func reduceReview(s ReviewState, action Action) ReviewState {
	switch a := action.(type) {
	case SetActiveReview:
		review := a.Review
		s.Active = &review
	case SetReviewList:
		lists := maps.Clone(s.Lists)
		if lists == nil {
			lists = make(map[string][]domain.Review)
		}
		lists[a.Name] = a.Reviews
		s.Lists = lists
	}
	return s
}

func reduceDiscover(s DiscoverState, action Action) DiscoverState {
	if a, ok := action.(SetDiscoverGroups); ok {
		s.Term = a.Term
		s.Groups = a.Groups
		s.Lists = discover.CreateReviewLists(a.Groups)
	}
	return s
}

func reduceVideo(s VideoState, action Action) VideoState {
	if a, ok := action.(SetActiveVideo); ok {
		review := a.Review
		s.Active = &review
	}
	return s
}

func reduceChannel(s ChannelState, action Action) ChannelState {
	switch a := action.(type) {
	case SetProfileStatistics:
		statistics := a.Statistics
		s.UserID = a.UserID
		s.Statistics = &statistics
	case SetFollowing:
		s.Following = a.Following
	}
	return s
}

func reduceLoading(s LoadingState, action Action) LoadingState {
	a, ok := action.(SetLoading)
	if !ok {
		return s
	}

	pending := maps.Clone(s.Pending)
	if a.Loading {
		if pending == nil {
			pending = make(map[string]bool)
		}
		pending[a.Key] = true
	} else {
		delete(pending, a.Key)
	}
	s.Pending = pending
	return s
}

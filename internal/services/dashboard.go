package services

import (
	"context"

	"github.com/quickblog-app/apiserver/types"
)

const recentBlogLimit = 5

// DashboardService assembles the admin dashboard aggregates.
type DashboardService struct {
	blogs    BlogRepository
	comments CommentRepository
}

func NewDashboardService(blogs BlogRepository, comments CommentRepository) *DashboardService {
	return &DashboardService{blogs: blogs, comments: comments}
}

// Load returns the recent blogs plus blog, comment and draft counts.
func (s *DashboardService) Load(ctx context.Context) (types.Dashboard, error) {
	recent, err := s.blogs.ListRecent(ctx, recentBlogLimit)
	if err != nil {
		return types.Dashboard{}, err
	}
	totalBlogs, err := s.blogs.Count(ctx)
	if err != nil {
		return types.Dashboard{}, err
	}
	totalComments, err := s.comments.Count(ctx)
	if err != nil {
		return types.Dashboard{}, err
	}
	drafts, err := s.blogs.CountDrafts(ctx)
	if err != nil {
		return types.Dashboard{}, err
	}

	return types.Dashboard{
		RecentBlogs:   recent,
		TotalBlogs:    totalBlogs,
		TotalComments: totalComments,
		DraftBlogs:    drafts,
	}, nil
}

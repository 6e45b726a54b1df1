// ABOUTME: Public catalog endpoints: random courses and random instructors
// ABOUTME: Batch fetches fan out with bounded concurrency via errgroup

package client

import (
	"context"
	"net/http"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/markalston/learnctl/internal/models"
)

const (
	pathRandomCourse     = "/public/randomproducts/product/random"
	pathRandomInstructor = "/public/randomusers/user/random"
)

// RandomCourse calls GET /public/randomproducts/product/random
func (c *Client) RandomCourse(ctx context.Context) (*models.Course, error) {
	course, err := call[models.Course](ctx, c, "random course", http.MethodGet, pathRandomCourse, nil)
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// RandomCourses fetches n courses concurrently. The first failure cancels the rest
// and is returned; on success the slice is in slot order.
func (c *Client) RandomCourses(ctx context.Context, n int) ([]models.Course, error) {
	if n <= 0 {
		return nil, nil
	}

	courses := make([]models.Course, n)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fanOut)
	for i := range n {
		g.Go(func() error {
			course, err := c.RandomCourse(gctx)
			if err != nil {
				return err
			}
			courses[i] = *course
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return courses, nil
}

// RandomInstructor calls GET /public/randomusers/user/random
func (c *Client) RandomInstructor(ctx context.Context) (*models.Instructor, error) {
	instructor, err := call[models.Instructor](ctx, c, "random instructor", http.MethodGet, pathRandomInstructor, nil)
	if err != nil {
		return nil, err
	}
	return &instructor, nil
}

// Instructors fetches one random instructor per course id.
// Failures are logged and leave that course without an instructor.
func (c *Client) Instructors(ctx context.Context, courseIDs []int) map[int]models.Instructor {
	var (
		mu  sync.Mutex
		out = make(map[int]models.Instructor, len(courseIDs))
	)

	var g errgroup.Group
	g.SetLimit(c.fanOut)
	for _, id := range courseIDs {
		g.Go(func() error {
			instructor, err := c.RandomInstructor(ctx)
			if err != nil {
				c.logger.Warn("Failed to fetch instructor", "course_id", id, "error", err)
				return nil
			}
			mu.Lock()
			out[id] = *instructor
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return out
}

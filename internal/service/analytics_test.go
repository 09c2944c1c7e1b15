package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/example/shortly/internal/database"
	"github.com/example/shortly/internal/models"
)

type MockClickAnalytics struct {
	mock.Mock
}

func (m *MockClickAnalytics) Totals(ctx context.Context, filter database.EventFilter) (int64, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockClickAnalytics) CountBy(ctx context.Context, filter database.EventFilter, dim database.Dimension) ([]models.BucketCount, error) {
	args := m.Called(ctx, filter, dim)
	buckets, _ := args.Get(0).([]models.BucketCount)
	return buckets, args.Error(1)
}

func (m *MockClickAnalytics) TopLinks(ctx context.Context, ownerID int64, since time.Time, limit int) ([]models.LinkClicks, error) {
	args := m.Called(ctx, ownerID, since, limit)
	links, _ := args.Get(0).([]models.LinkClicks)
	return links, args.Error(1)
}

type MockLinkCounter struct {
	mock.Mock
}

func (m *MockLinkCounter) GetByShortCode(ctx context.Context, shortCode string) (*models.ShortLink, error) {
	args := m.Called(ctx, shortCode)
	link, _ := args.Get(0).(*models.ShortLink)
	return link, args.Error(1)
}

func (m *MockLinkCounter) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	args := m.Called(ctx, ownerID)
	return args.Get(0).(int64), args.Error(1)
}

type AnalyticsServiceTestSuite struct {
	suite.Suite
	clicksMock *MockClickAnalytics
	linksMock  *MockLinkCounter
	svc        *AnalyticsService
}

func (suite *AnalyticsServiceTestSuite) SetupSubTest() {
	suite.clicksMock = new(MockClickAnalytics)
	suite.linksMock = new(MockLinkCounter)
	suite.svc = NewAnalyticsService(suite.clicksMock, suite.linksMock)
}

func (suite *AnalyticsServiceTestSuite) TearDownSubTest() {
	suite.clicksMock.AssertExpectations(suite.T())
	suite.linksMock.AssertExpectations(suite.T())
}

func (suite *AnalyticsServiceTestSuite) expectAggregation(total, uniqueIPs int64) {
	suite.clicksMock.
		On("Totals", mock.Anything, mock.Anything).
		Once().
		Return(total, uniqueIPs, nil)
	suite.clicksMock.
		On("CountBy", mock.Anything, mock.Anything, mock.Anything).
		Times(4).
		Return([]models.BucketCount{{Key: "x", Count: total}}, nil)
}

func (suite *AnalyticsServiceTestSuite) TestSummarizeLink() {
	ownerID := int64(7)
	link := &models.ShortLink{ID: 1, ShortCode: "abc12345", OwnerID: &ownerID}

	suite.Run("link not found", func() {
		suite.linksMock.
			On("GetByShortCode", mock.Anything, "missing1").
			Once().
			Return(nil, database.ErrLinkNotFound)

		report, err := suite.svc.SummarizeLink(context.Background(), ownerID, "missing1", models.TimeframeWeek)

		suite.ErrorIs(err, database.ErrLinkNotFound)
		suite.Nil(report)
	})

	suite.Run("not owner", func() {
		suite.linksMock.
			On("GetByShortCode", mock.Anything, "abc12345").
			Once().
			Return(link, nil)

		report, err := suite.svc.SummarizeLink(context.Background(), 99, "abc12345", models.TimeframeWeek)

		suite.ErrorIs(err, ErrNotOwner)
		suite.Nil(report)
	})

	suite.Run("unrecognized timeframe falls back to 7d", func() {
		suite.linksMock.
			On("GetByShortCode", mock.Anything, "abc12345").
			Once().
			Return(link, nil)
		suite.expectAggregation(10, 3)

		report, err := suite.svc.SummarizeLink(context.Background(), ownerID, "abc12345", models.Timeframe("bogus"))

		suite.NoError(err)
		suite.Equal(models.TimeframeWeek, report.Timeframe)
	})

	suite.Run("window bounds match the timeframe", func() {
		suite.linksMock.
			On("GetByShortCode", mock.Anything, "abc12345").
			Once().
			Return(link, nil)
		suite.clicksMock.
			On("Totals", mock.Anything, mock.MatchedBy(func(f database.EventFilter) bool {
				return f.LinkID != nil && *f.LinkID == 1 &&
					time.Since(f.Since) < 25*time.Hour && time.Since(f.Since) > 23*time.Hour
			})).
			Once().
			Return(int64(5), int64(2), nil)
		suite.clicksMock.
			On("CountBy", mock.Anything, mock.Anything, mock.Anything).
			Times(4).
			Return(nil, nil)

		report, err := suite.svc.SummarizeLink(context.Background(), ownerID, "abc12345", models.TimeframeDay)

		suite.NoError(err)
		suite.Equal(int64(5), report.TotalClicks)
		suite.Equal(int64(2), report.UniqueIPs)
	})

	suite.Run("all timeframe is unbounded", func() {
		suite.linksMock.
			On("GetByShortCode", mock.Anything, "abc12345").
			Once().
			Return(link, nil)
		suite.clicksMock.
			On("Totals", mock.Anything, mock.MatchedBy(func(f database.EventFilter) bool {
				return f.Since.IsZero()
			})).
			Once().
			Return(int64(100), int64(40), nil)
		suite.clicksMock.
			On("CountBy", mock.Anything, mock.Anything, mock.Anything).
			Times(4).
			Return(nil, nil)

		report, err := suite.svc.SummarizeLink(context.Background(), ownerID, "abc12345", models.TimeframeAll)

		suite.NoError(err)
		suite.Equal(int64(100), report.TotalClicks)
	})

	suite.Run("aggregation error propagates", func() {
		suite.linksMock.
			On("GetByShortCode", mock.Anything, "abc12345").
			Once().
			Return(link, nil)
		suite.clicksMock.
			On("Totals", mock.Anything, mock.Anything).
			Once().
			Return(int64(0), int64(0), errors.New("query timeout"))

		report, err := suite.svc.SummarizeLink(context.Background(), ownerID, "abc12345", models.TimeframeWeek)

		suite.Error(err)
		suite.Nil(report)
	})
}

func (suite *AnalyticsServiceTestSuite) TestSummarizeOwner() {
	ownerID := int64(7)

	suite.Run("unrecognized timeframe falls back to 30d", func() {
		suite.expectAggregation(42, 10)
		suite.linksMock.
			On("CountByOwner", mock.Anything, ownerID).
			Once().
			Return(int64(3), nil)
		suite.clicksMock.
			On("TopLinks", mock.Anything, ownerID, mock.Anything, topLinksLimit).
			Once().
			Return([]models.LinkClicks{{ShortCode: "abc12345", Clicks: 40}}, nil)

		stats, err := suite.svc.SummarizeOwner(context.Background(), ownerID, models.Timeframe(""))

		suite.NoError(err)
		suite.Equal(models.TimeframeMonth, stats.Timeframe)
		suite.Equal(int64(42), stats.TotalClicks)
		suite.Equal(int64(3), stats.TotalLinks)
		suite.Len(stats.TopLinks, 1)
	})

	suite.Run("owner filter applied", func() {
		suite.clicksMock.
			On("Totals", mock.Anything, mock.MatchedBy(func(f database.EventFilter) bool {
				return f.OwnerID != nil && *f.OwnerID == ownerID && f.LinkID == nil
			})).
			Once().
			Return(int64(0), int64(0), nil)
		suite.clicksMock.
			On("CountBy", mock.Anything, mock.Anything, mock.Anything).
			Times(4).
			Return(nil, nil)
		suite.linksMock.
			On("CountByOwner", mock.Anything, ownerID).
			Once().
			Return(int64(0), nil)
		suite.clicksMock.
			On("TopLinks", mock.Anything, ownerID, mock.Anything, topLinksLimit).
			Once().
			Return(nil, nil)

		stats, err := suite.svc.SummarizeOwner(context.Background(), ownerID, models.TimeframeQuarter)

		suite.NoError(err)
		suite.Equal(models.TimeframeQuarter, stats.Timeframe)
	})
}

func TestAnalyticsServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AnalyticsServiceTestSuite))
}

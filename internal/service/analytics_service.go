package service

import (
	"context"
	"coursegen_backend/internal/model"
	"coursegen_backend/internal/repository"
	"coursegen_backend/internal/util"
	"coursegen_backend/pkg/logger"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	recentActivityLimit = 10
	weeklyDays          = 7
)

// AnalyticsService 学习分析，结果按用户缓存在 Redis（未启用 Redis 时直接查询）
type AnalyticsService struct {
	CourseRepo   *repository.CourseRepository
	ProgressRepo *repository.ProgressRepository
	ActivityRepo *repository.ActivityRepository
	Redis        *redis.Client
	CacheTTL     time.Duration
	Now          func() time.Time
}

func NewAnalyticsService(
	courseRepo *repository.CourseRepository,
	progressRepo *repository.ProgressRepository,
	activityRepo *repository.ActivityRepository,
	rdb *redis.Client,
	cacheTTL time.Duration,
) *AnalyticsService {
	return &AnalyticsService{
		CourseRepo:   courseRepo,
		ProgressRepo: progressRepo,
		ActivityRepo: activityRepo,
		Redis:        rdb,
		CacheTTL:     cacheTTL,
		Now:          time.Now,
	}
}

func analyticsCacheKey(userID string) string {
	return "analytics:" + userID
}

// Invalidate 清除用户的分析缓存
func (s *AnalyticsService) Invalidate(ctx context.Context, userID string) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, analyticsCacheKey(userID)).Err(); err != nil {
		logger.Log.Warn("Failed to invalidate analytics cache", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *AnalyticsService) GetAnalytics(ctx context.Context, userID string) (*model.LearningAnalytics, error) {
	if cached := s.fromCache(ctx, userID); cached != nil {
		return cached, nil
	}

	now := s.Now()
	today := startOfDay(now)
	weekStart := today.AddDate(0, 0, -(weeklyDays - 1))

	var (
		courses    []model.Course
		records    []model.ProgressRecord
		recent     []model.ActivityItem
		accesses   []time.Time
		activities []model.StudyActivity
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		courses, err = s.CourseRepo.ListByUser(gctx, userID)
		return
	})
	g.Go(func() (err error) {
		records, err = s.ProgressRepo.ListByUser(gctx, userID)
		return
	})
	g.Go(func() (err error) {
		recent, err = s.ActivityRepo.Recent(gctx, userID, recentActivityLimit)
		return
	})
	g.Go(func() (err error) {
		accesses, err = s.ActivityRepo.AccessTimes(gctx, userID)
		return
	})
	g.Go(func() (err error) {
		activities, err = s.ActivityRepo.Since(gctx, userID, weekStart)
		return
	})
	if err := g.Wait(); err != nil {
		return nil, util.Persistence("load analytics", err)
	}

	if recent == nil {
		recent = []model.ActivityItem{}
	}

	overview, courseStats := summarizeCourses(courses, records)
	result := &model.LearningAnalytics{
		Overview:       overview,
		Courses:        courseStats,
		RecentActivity: recent,
		LearningStreak: LearningStreak(accesses, now),
		WeeklyProgress: WeeklyProgress(activities, now),
	}

	s.toCache(ctx, userID, result)
	return result, nil
}

func (s *AnalyticsService) fromCache(ctx context.Context, userID string) *model.LearningAnalytics {
	if s.Redis == nil {
		return nil
	}
	data, err := s.Redis.Get(ctx, analyticsCacheKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Log.Warn("Failed to read analytics cache", zap.String("user_id", userID), zap.Error(err))
		}
		return nil
	}
	var cached model.LearningAnalytics
	if err := json.Unmarshal(data, &cached); err != nil {
		return nil
	}
	return &cached
}

func (s *AnalyticsService) toCache(ctx context.Context, userID string, a *model.LearningAnalytics) {
	if s.Redis == nil || s.CacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(a)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, analyticsCacheKey(userID), data, s.CacheTTL).Err(); err != nil {
		logger.Log.Warn("Failed to write analytics cache", zap.String("user_id", userID), zap.Error(err))
	}
}

func summarizeCourses(courses []model.Course, records []model.ProgressRecord) (model.AnalyticsOverview, []model.CourseAnalytics) {
	byCourse := make(map[string]model.ProgressRecord, len(records))
	for _, r := range records {
		byCourse[r.CourseID] = r
	}

	var overview model.AnalyticsOverview
	stats := make([]model.CourseAnalytics, 0, len(courses))
	var progressSum float64

	for _, c := range courses {
		item := model.CourseAnalytics{
			CourseID:     c.ID,
			Title:        c.Title,
			Status:       c.Status,
			TotalModules: c.TotalModules,
			CompletedAt:  c.CompletedAt,
		}
		if r, ok := byCourse[c.ID]; ok {
			item.ProgressPercentage = r.ProgressPercentage
			item.CompletedModules = len(r.CompletedModules)
			item.TimeSpent = r.TimeSpent
			lastAccessed := r.LastAccessed
			item.LastAccessed = &lastAccessed
		}
		stats = append(stats, item)

		overview.TotalCourses++
		if c.Status == model.CourseCompleted {
			overview.CompletedCourses++
		} else {
			overview.ActiveCourses++
		}
		overview.TotalTimeSpent += item.TimeSpent
		overview.ModulesCompleted += item.CompletedModules
		progressSum += item.ProgressPercentage
	}

	if overview.TotalCourses > 0 {
		overview.AverageProgress = math.Round(progressSum/float64(overview.TotalCourses)*100) / 100
	}
	return overview, stats
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func daysBetween(later, earlier time.Time) int {
	return int(math.Round(later.Sub(earlier).Hours() / 24))
}

// LearningStreak 从今天往前数连续有学习记录的天数，遇到第一个断档即停止；今天没有记录时为 0
func LearningStreak(accesses []time.Time, now time.Time) int {
	today := startOfDay(now)
	seen := make(map[time.Time]struct{}, len(accesses))
	days := make([]time.Time, 0, len(accesses))
	for _, a := range accesses {
		d := startOfDay(a.In(now.Location()))
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].After(days[j]) })

	streak := 0
	for _, d := range days {
		diff := daysBetween(today, d)
		if diff < streak {
			// 未来日期，忽略
			continue
		}
		if diff != streak {
			break
		}
		streak++
	}
	return streak
}

// WeeklyProgress 最近 7 天（含今天）每天的学习时长和次数，按日期升序
func WeeklyProgress(activities []model.StudyActivity, now time.Time) []model.DailyProgress {
	today := startOfDay(now)
	days := make([]model.DailyProgress, weeklyDays)
	index := make(map[string]int, weeklyDays)
	for i := 0; i < weeklyDays; i++ {
		date := today.AddDate(0, 0, i-(weeklyDays-1)).Format(util.DateFormat)
		days[i] = model.DailyProgress{Date: date}
		index[date] = i
	}

	for _, a := range activities {
		key := a.AccessedAt.In(now.Location()).Format(util.DateFormat)
		if i, ok := index[key]; ok {
			days[i].TimeSpent += a.TimeSpent
			days[i].Sessions++
		}
	}
	return days
}

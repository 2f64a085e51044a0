package model

import "time"

// AnalyticsOverview 学习概览
type AnalyticsOverview struct {
	TotalCourses     int     `json:"total_courses"`
	ActiveCourses    int     `json:"active_courses"`
	CompletedCourses int     `json:"completed_courses"`
	AverageProgress  float64 `json:"average_progress"`
	TotalTimeSpent   int64   `json:"total_time_spent"`
	ModulesCompleted int     `json:"modules_completed"`
}

// CourseAnalytics 单门课程的进度汇总
type CourseAnalytics struct {
	CourseID           string       `json:"course_id"`
	Title              string       `json:"title"`
	Status             CourseStatus `json:"status"`
	ProgressPercentage float64      `json:"progress_percentage"`
	CompletedModules   int          `json:"completed_modules"`
	TotalModules       int          `json:"total_modules"`
	TimeSpent          int64        `json:"time_spent"`
	LastAccessed       *time.Time   `json:"last_accessed"`
	CompletedAt        *time.Time   `json:"completed_at"`
}

// ActivityItem 最近学习记录
type ActivityItem struct {
	CourseID           string    `json:"course_id"`
	CourseTitle        string    `json:"course_title"`
	ModuleID           string    `json:"module_id,omitempty"`
	TimeSpent          int64     `json:"time_spent"`
	ProgressPercentage float64   `json:"progress_percentage"`
	AccessedAt         time.Time `json:"accessed_at"`
}

// DailyProgress 按天聚合的学习数据
type DailyProgress struct {
	Date      string `json:"date"`
	TimeSpent int64  `json:"time_spent"`
	Sessions  int    `json:"sessions"`
}

// LearningAnalytics 学习分析总览
type LearningAnalytics struct {
	Overview       AnalyticsOverview `json:"overview"`
	Courses        []CourseAnalytics `json:"courses"`
	RecentActivity []ActivityItem    `json:"recent_activity"`
	LearningStreak int               `json:"learning_streak"`
	WeeklyProgress []DailyProgress   `json:"weekly_progress"`
}

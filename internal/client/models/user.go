// Package models holds the client-side view of backend resources.
package models

// AcademicInfo carries the study-related part of a student profile.
type AcademicInfo struct {
	Advisor                 string  `json:"advisor"`
	FacultyID               string  `json:"facultyId"`
	FacultyName             string  `json:"facultyName"`
	GroupName               string  `json:"groupName"`
	Program                 string  `json:"program"`
	Semester                int     `json:"semester"`
	SpecializationID        string  `json:"specializationId"`
	SpecializationShortName string  `json:"specializationShortName"`
	StudentID               string  `json:"studentId"`
	StudyYear               int     `json:"studyYear"`
	SubgroupIndex           string  `json:"subgroupIndex"`
	GPA                     float64 `json:"gpa"`
}

// User is the signed-in user's profile.
type User struct {
	ID                  string        `json:"id"`
	Email               string        `json:"email"`
	Name                string        `json:"name"`
	Role                string        `json:"role"`
	Phone               string        `json:"phone"`
	MatriculationNumber string        `json:"matriculationNumber"`
	AcademicInfo        *AcademicInfo `json:"academicInfo"`
}

package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"daycaremoments/internal/service"
)

// StaffHandler serves photo upload and moderation, activity logging, and
// child enrollment.
type StaffHandler struct {
	photoService      *service.PhotoService
	activityService   *service.ActivityService
	enrollmentService *service.EnrollmentService
	childRepo         childLister
	maxFileSize       int64
	maxFilesPerUpload int
}

func NewStaffHandler(photoService *service.PhotoService, activityService *service.ActivityService, enrollmentService *service.EnrollmentService, childRepo childLister, maxFileSize int64, maxFilesPerUpload int) *StaffHandler {
	return &StaffHandler{
		photoService:      photoService,
		activityService:   activityService,
		enrollmentService: enrollmentService,
		childRepo:         childRepo,
		maxFileSize:       maxFileSize,
		maxFilesPerUpload: maxFilesPerUpload,
	}
}

// UploadPhotos accepts a multipart form with one or more photos plus an
// optional caption and child_id, and runs each through the pipeline.
func (h *StaffHandler) UploadPhotos(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize*int64(h.maxFilesPerUpload)+1<<20)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid upload", "", err)
		return
	}

	files := r.MultipartForm.File["photos"]
	if len(files) == 0 {
		respondWithError(w, http.StatusBadRequest, "No photos in the upload", "", nil)
		return
	}
	if len(files) > h.maxFilesPerUpload {
		respondWithError(w, http.StatusBadRequest, "Too many files in one upload", "", nil)
		return
	}

	caption := r.FormValue("caption")
	childID := r.FormValue("child_id")
	capturedAt, _ := time.Parse(time.RFC3339, r.FormValue("captured_at"))

	type uploadOutcome struct {
		Photo    map[string]interface{} `json:"photo,omitempty"`
		Error    string                 `json:"error,omitempty"`
		Warnings []string               `json:"warnings,omitempty"`
	}
	outcomes := make([]uploadOutcome, 0, len(files))

	for _, header := range files {
		file, err := header.Open()
		if err != nil {
			outcomes = append(outcomes, uploadOutcome{Error: "could not read file"})
			continue
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			outcomes = append(outcomes, uploadOutcome{Error: "could not read file"})
			continue
		}

		result, err := h.photoService.Upload(r.Context(), service.UploadRequest{
			Data:        data,
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Caption:     caption,
			ChildID:     childID,
			CapturedAt:  capturedAt,
			UploadedBy:  user.ID,
			OrgID:       user.OrganizationID,
		})
		if err != nil {
			outcomes = append(outcomes, uploadOutcome{Error: err.Error()})
			continue
		}
		outcomes = append(outcomes, uploadOutcome{
			Photo:    photoView(result.Photo),
			Warnings: result.Warnings,
		})
	}

	respondJSON(w, http.StatusOK, outcomes)
}

// PendingPhotos lists photos waiting for moderation.
func (h *StaffHandler) PendingPhotos(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	photos, err := h.photoService.Pending(user.OrganizationID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load pending photos", "", err)
		return
	}

	views := make([]map[string]interface{}, 0, len(photos))
	for _, p := range photos {
		views = append(views, photoView(&p))
	}
	respondJSON(w, http.StatusOK, views)
}

// ApprovePhoto approves a pending photo.
func (h *StaffHandler) ApprovePhoto(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	photoID := r.PathValue("id")

	warning, err := h.photoService.Approve(r.Context(), photoID, user.OrganizationID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	body := map[string]string{"status": "approved"}
	if warning != "" {
		body["warning"] = warning
	}
	respondJSON(w, http.StatusOK, body)
}

// RejectPhoto rejects a pending photo and removes it from storage.
func (h *StaffHandler) RejectPhoto(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	photoID := r.PathValue("id")

	if err := h.photoService.Reject(r.Context(), photoID, user.OrganizationID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "rejected"})
}

// Children lists every child in the organization.
func (h *StaffHandler) Children(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	children, err := h.childRepo.GetByOrganization(user.OrganizationID)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to load children", "", err)
		return
	}

	views := make([]map[string]interface{}, 0, len(children))
	for _, c := range children {
		views = append(views, childView(&c))
	}
	respondJSON(w, http.StatusOK, views)
}

type recordActivityRequest struct {
	ChildID         string `json:"child_id"`
	Type            string `json:"type"`
	Mood            string `json:"mood"`
	Notes           string `json:"notes"`
	StartedAt       string `json:"started_at"`
	DurationMinutes int    `json:"duration_minutes"`
}

// RecordActivity logs an activity for a child.
func (h *StaffHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req recordActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body", "", err)
		return
	}

	startedAt, _ := time.Parse(time.RFC3339, req.StartedAt)
	activity, err := h.activityService.Record(req.ChildID, user.OrganizationID, req.Type, req.Mood, req.Notes, startedAt, req.DurationMinutes, user.ID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, activityView(activity))
}

// Enroll registers a child and their parent. The reference photo is an
// optional multipart file used for face enrollment.
func (h *StaffHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+1<<20)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid enrollment form", "", err)
		return
	}

	dateOfBirth, err := time.Parse("2006-01-02", r.FormValue("date_of_birth"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid date of birth, use YYYY-MM-DD", "", nil)
		return
	}

	var referencePhoto []byte
	if file, _, err := r.FormFile("reference_photo"); err == nil {
		referencePhoto, err = io.ReadAll(file)
		file.Close()
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Could not read reference photo", "", err)
			return
		}
	}

	result, err := h.enrollmentService.Enroll(r.Context(),
		r.FormValue("child_name"),
		dateOfBirth,
		r.FormValue("parent_email"),
		r.FormValue("parent_name"),
		r.FormValue("parent_phone"),
		user.OrganizationID,
		referencePhoto,
	)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	body := map[string]interface{}{
		"child":         childView(result.Child),
		"parent":        userView(result.Parent),
		"parent_is_new": result.ParentIsNew,
	}
	if result.TempPassword != "" {
		body["temp_password"] = result.TempPassword
	}
	if result.Warning != "" {
		body["warning"] = result.Warning
	}
	respondJSON(w, http.StatusCreated, body)
}

// AddReferencePhoto records another face encoding for an enrolled child.
func (h *StaffHandler) AddReferencePhoto(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	childID := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+1<<20)
	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid upload", "", err)
		return
	}

	file, _, err := r.FormFile("reference_photo")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "reference_photo file is required", "", nil)
		return
	}
	data, err := io.ReadAll(file)
	file.Close()
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Could not read reference photo", "", err)
		return
	}

	if err := h.enrollmentService.AddReferencePhoto(r.Context(), childID, user.OrganizationID, data); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "face enrolled"})
}

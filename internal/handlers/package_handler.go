package handlers

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"kl-decors-backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type PackageHandler struct {
	db      *gorm.DB
	baseURL string
}

func NewPackageHandler(db *gorm.DB, baseURL string) *PackageHandler {
	return &PackageHandler{db: db, baseURL: baseURL}
}

// --- GET: List active packages (storefront) ---
func (h *PackageHandler) ListPackages(c *gin.Context) {
	var packages []models.Package

	q := h.db.Where("is_active = ?", true)
	if cat := c.Query("category"); cat != "" {
		q = q.Where("category = ?", cat)
	}

	if err := q.Order("id desc").Find(&packages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch packages"})
		return
	}
	c.JSON(http.StatusOK, packages)
}

// --- GET: List all packages including inactive (admin) ---
func (h *PackageHandler) AdminListPackages(c *gin.Context) {
	var packages []models.Package
	if err := h.db.Order("id desc").Find(&packages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch packages"})
		return
	}
	c.JSON(http.StatusOK, packages)
}

// --- POST: Add a new package ---
func (h *PackageHandler) AddPackage(c *gin.Context) {
	var newPackage models.Package
	if err := c.ShouldBindJSON(&newPackage); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if newPackage.Title == "" || newPackage.Price.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title and a non-negative price are required"})
		return
	}

	if err := h.db.Create(&newPackage).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create package"})
		return
	}
	c.JSON(http.StatusCreated, newPackage)
}

// --- PUT: Update title, price, image or active flag ---
func (h *PackageHandler) UpdatePackage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid package ID"})
		return
	}

	var pkg models.Package
	if err := h.db.First(&pkg, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Package not found"})
		return
	}

	// We use a map so we only update what was sent (partial update)
	var updateData map[string]interface{}
	if err := c.ShouldBindJSON(&updateData); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	delete(updateData, "id")

	if err := h.db.Model(&pkg).Updates(updateData).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update package"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Package updated successfully", "package": pkg})
}

// --- DELETE: Remove a package ---
func (h *PackageHandler) DeletePackage(c *gin.Context) {
	id := c.Param("id")
	if err := h.db.Delete(&models.Package{}, id).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not delete package. It might be linked to past orders."})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Package deleted successfully"})
}

// --- UPLOAD: Package images ---
// The original uploaded to Supabase Storage; here files land in ./uploads
// and are served statically.
func (h *PackageHandler) UploadImage(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	filename := fmt.Sprintf("%d_%s", time.Now().Unix(), file.Filename)
	if err := os.MkdirAll("./uploads", 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}
	if err := c.SaveUploadedFile(file, "./uploads/"+filename); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File uploaded successfully",
		"url":     h.baseURL + "/uploads/" + filename,
	})
}

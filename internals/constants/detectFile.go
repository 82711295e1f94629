package constants

import (
	"path/filepath"
	"strings"
)

type FileKind int

const (
	FileKindUnknown FileKind = 99
	FileKindDoc     FileKind = 3
	FileKindPDF     FileKind = 4
	FileKindSheet   FileKind = 5
	FileKindImage   FileKind = 6
)

func DetectFileTypeFromExt(filename string) FileKind {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".doc", ".docx":
		return FileKindDoc
	case ".pdf":
		return FileKindPDF
	case ".xls", ".xlsx", ".csv":
		return FileKindSheet
	case ".png", ".jpg", ".jpeg", ".webp":
		return FileKindImage
	default:
		return FileKindUnknown
	}
}

// AllowedStudentDocument: berkas siswa (akta, rapor, foto) yang diterima.
func AllowedStudentDocument(filename string) bool {
	switch DetectFileTypeFromExt(filename) {
	case FileKindDoc, FileKindPDF, FileKindImage:
		return true
	}
	return false
}

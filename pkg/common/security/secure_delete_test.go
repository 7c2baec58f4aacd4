package security

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewSecureFileDeleter(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{"enabled", true},
		{"disabled", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sfd := NewSecureFileDeleter(tt.enabled)
			defer sfd.Shutdown()

			if sfd.enabled != tt.enabled {
				t.Errorf("enabled = %v, want %v", sfd.enabled, tt.enabled)
			}

			if sfd.tempFiles == nil {
				t.Error("tempFiles map not initialized")
			}

			if sfd.done == nil {
				t.Error("done channel not initialized")
			}

			if tt.enabled {
				if sfd.cleanupTicker == nil {
					t.Error("cleanupTicker not initialized when enabled")
				}
			} else {
				if sfd.cleanupTicker != nil {
					t.Error("cleanupTicker should be nil when disabled")
				}
			}
		})
	}
}

func TestSecureFileDeleter_RegisterTempFile(t *testing.T) {
	// Test enabled mode
	t.Run("enabled", func(t *testing.T) {
		sfd := NewSecureFileDeleter(true)
		defer sfd.Shutdown()

		testPath := "/tmp/test_file"
		sfd.RegisterTempFile(testPath)

		sfd.mu.Lock()
		defer sfd.mu.Unlock()

		if _, exists := sfd.tempFiles[testPath]; !exists {
			t.Errorf("temp file %s not registered", testPath)
		}
	})

	// Test disabled mode
	t.Run("disabled", func(t *testing.T) {
		sfd := NewSecureFileDeleter(false)
		defer sfd.Shutdown()

		testPath := "/tmp/test_file"
		sfd.RegisterTempFile(testPath)

		sfd.mu.Lock()
		defer sfd.mu.Unlock()

		if len(sfd.tempFiles) != 0 {
			t.Error("temp file registered when disabled")
		}
	})
}

func TestSecureFileDeleter_SecureDelete(t *testing.T) {
	tests := []struct {
		name     string
		enabled  bool
		fileSize int64
		content  []byte
	}{
		{"enabled_small_file", true, 100, []byte("test content that needs secure deletion")},
		{"enabled_empty_file", true, 0, []byte{}},
		{"enabled_large_file", true, 1024, make([]byte, 1024)},
		{"disabled_file", false, 100, []byte("test content for disabled mode")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sfd := NewSecureFileDeleter(tt.enabled)
			defer sfd.Shutdown()

			// Create temporary directory
			tmpDir, err := os.MkdirTemp("", "secure_delete_test")
			if err != nil {
				t.Fatalf("failed to create temp dir: %v", err)
			}
			defer os.RemoveAll(tmpDir)

			// Create test file
			testFile := filepath.Join(tmpDir, "test_file")
			file, err := os.Create(testFile)
			if err != nil {
				t.Fatalf("failed to create test file: %v", err)
			}

			if len(tt.content) > 0 {
				if _, err := file.Write(tt.content); err != nil {
					t.Fatalf("failed to write test content: %v", err)
				}
			}
			file.Close()

			// Verify file exists before deletion
			if _, err := os.Stat(testFile); os.IsNotExist(err) {
				t.Fatal("test file should exist before deletion")
			}

			// Perform secure deletion
			err = sfd.SecureDelete(testFile)
			if err != nil {
				t.Errorf("SecureDelete failed: %v", err)
			}

			// Verify file is deleted
			if _, err := os.Stat(testFile); !os.IsNotExist(err) {
				t.Error("file should be deleted after SecureDelete")
			}
		})
	}
}

func TestSecureFileDeleter_SecureDelete_NonExistentFile(t *testing.T) {
	sfd := NewSecureFileDeleter(true)
	defer sfd.Shutdown()

	nonExistentFile := "/tmp/this_file_does_not_exist"
	err := sfd.SecureDelete(nonExistentFile)
	if err != nil {
		t.Errorf("SecureDelete should not error on non-existent file: %v", err)
	}
}

func TestSecureFileDeleter_SecureDelete_OverwriteVerification(t *testing.T) {
	// This test verifies that the file content is actually overwritten
	// by examining the file system behavior, though the actual overwrite
	// content can't be easily verified without low-level disk access
	
	sfd := NewSecureFileDeleter(true)
	defer sfd.Shutdown()

	tmpDir, err := os.MkdirTemp("", "overwrite_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	testFile := filepath.Join(tmpDir, "overwrite_test")
	originalContent := []byte("sensitive data that must be overwritten")

	// Create file with sensitive content
	if err := os.WriteFile(testFile, originalContent, 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	// Perform secure deletion
	err = sfd.SecureDelete(testFile)
	if err != nil {
		t.Errorf("SecureDelete failed: %v", err)
	}

	// File should be completely removed
	if _, err := os.Stat(testFile); !os.IsNotExist(err) {
		t.Error("file should be completely removed")
	}
}

func TestSecureFileDeleter_cleanupOldTempFiles(t *testing.T) {
	sfd := NewSecureFileDeleter(true)
	defer sfd.Shutdown()

	tmpDir, err := os.MkdirTemp("", "cleanup_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Create test files
	oldFile := filepath.Join(tmpDir, "old_file")
	newFile := filepath.Join(tmpDir, "new_file")

	if err := os.WriteFile(oldFile, []byte("old content"), 0644); err != nil {
		t.Fatalf("failed to create old file: %v", err)
	}
	if err := os.WriteFile(newFile, []byte("new content"), 0644); err != nil {
		t.Fatalf("failed to create new file: %v", err)
	}

	// Register files with different timestamps
	sfd.mu.Lock()
	sfd.tempFiles[oldFile] = time.Now().Add(-2 * time.Hour) // Old file
	sfd.tempFiles[newFile] = time.Now()                     // New file
	sfd.mu.Unlock()

	// Run cleanup
	sfd.cleanupOldTempFiles()

	// Check results
	sfd.mu.Lock()
	defer sfd.mu.Unlock()

	if _, exists := sfd.tempFiles[oldFile]; exists {
		t.Error("old file should be removed from tracking")
	}

	if _, exists := sfd.tempFiles[newFile]; !exists {
		t.Error("new file should still be tracked")
	}

	// Old file should be deleted from filesystem
	if _, err := os.Stat(oldFile); !os.IsNotExist(err) {
		t.Error("old file should be deleted from filesystem")
	}

	// New file should still exist
	if _, err := os.Stat(newFile); os.IsNotExist(err) {
		t.Error("new file should still exist")
	}
}

func TestSecureFileDeleter_Shutdown(t *testing.T) {
	sfd := NewSecureFileDeleter(true)

	tmpDir, err := os.MkdirTemp("", "shutdown_test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	// Register some temp files
	testFile1 := filepath.Join(tmpDir, "temp1")
	testFile2 := filepath.Join(tmpDir, "temp2")

	if err := os.WriteFile(testFile1, []byte("temp1"), 0644); err != nil {
		t.Fatalf("failed to create temp file 1: %v", err)
	}
	if err := os.WriteFile(testFile2, []byte("temp2"), 0644); err != nil {
		t.Fatalf("failed to create temp file 2: %v", err)
	}

	sfd.RegisterTempFile(testFile1)
	sfd.RegisterTempFile(testFile2)

	// Shutdown should clean up all temp files
	sfd.Shutdown()

	// Verify files are deleted
	if _, err := os.Stat(testFile1); !os.IsNotExist(err) {
		t.Error("temp file 1 should be deleted on shutdown")
	}
	if _, err := os.Stat(testFile2); !os.IsNotExist(err) {
		t.Error("temp file 2 should be deleted on shutdown")
	}

	// Verify cleanup ticker is stopped
	if sfd.cleanupTicker != nil {
		// Ticker should be stopped, but we can't easily test this
		// The implementation calls Stop() which is the correct behavior
	}
}

func TestMemoryProtection(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{"enabled", true},
		{"disabled", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp := NewMemoryProtection(tt.enabled)

			if mp.enabled != tt.enabled {
				t.Errorf("enabled = %v, want %v", mp.enabled, tt.enabled)
			}
		})
	}
}

func TestMemoryProtection_ClearSensitiveData(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
		data    []byte
	}{
		{"enabled_clear_data", true, []byte("sensitive password")},
		{"disabled_no_clear", false, []byte("sensitive password")},
		{"enabled_empty_data", true, []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp := NewMemoryProtection(tt.enabled)
			originalData := make([]byte, len(tt.data))
			copy(originalData, tt.data)

			mp.ClearSensitiveData(tt.data)

			if tt.enabled && len(tt.data) > 0 {
				// Data should be cleared (all zeros)
				for i, b := range tt.data {
					if b != 0 {
						t.Errorf("data[%d] = %v, want 0 (data should be cleared)", i, b)
					}
				}
			} else if !tt.enabled && len(tt.data) > 0 {
				// Data should remain unchanged when disabled
				for i := range tt.data {
					if tt.data[i] != originalData[i] {
						t.Errorf("data should not be modified when disabled")
						break
					}
				}
			}
		})
	}
}

func TestMemoryProtection_WipeFast(t *testing.T) {
	tests := []struct {
		name    string
		enabled bool
	}{
		{"enabled", true},
		{"disabled", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mp := NewMemoryProtection(tt.enabled)
			data := []byte("owned plugin output buffer")
			original := append([]byte(nil), data...)

			mp.WipeFast(data)

			if tt.enabled {
				for i, b := range data {
					if b != 0 {
						t.Errorf("data[%d] = %v, want 0 after WipeFast", i, b)
					}
				}
			} else {
				for i := range data {
					if data[i] != original[i] {
						t.Error("WipeFast must not modify data when disabled")
						break
					}
				}
			}
		})
	}
}

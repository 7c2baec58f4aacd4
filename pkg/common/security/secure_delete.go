// Package security provides the two cleanup primitives filepool needs
// around temporary on-disk plugin artifacts and in-memory byte buffers.
//
// Security Components:
//   - SecureFileDeleter: multi-pass overwrite and removal of registered
//     temporary files; within filepool only this package's tests use it
//   - MemoryProtection: zero-fill clearing, with a non-GC WipeFast path
//     (the one buffer.Buffer.Neuter uses) and a ClearSensitiveData path
//     that also forces garbage collection
//
// Usage Example:
//
//	mp := security.NewMemoryProtection(true)
//	mp.WipeFast(buf.Bytes()) // what buffer.Buffer.Neuter calls
//	defer mp.ClearSensitiveData(leftoverBuf) // zero-fill plus forced GC
//
package security

import (
	"crypto/rand"
	"os"
	"runtime"
	"sync"
	"time"
)

// SecureFileDeleter provides comprehensive secure file deletion capabilities.
//
// This type implements multi-pass file overwriting and automatic cleanup
// of temporary files to prevent data recovery through forensic analysis.
// It uses a 3-pass overwrite strategy (zeros, ones, random) followed by
// file deletion to maximize data destruction effectiveness.
//
// Security Features:
//   - 3-pass overwrite algorithm for thorough data destruction
//   - Automatic temporary file tracking and cleanup
//   - Background cleanup of stale temporary files
//   - Forced disk synchronization during overwrites
//   - Graceful degradation when security features are disabled
//
// Implementation Details:
//   - Uses crypto/rand for cryptographically secure random data
//   - Performs explicit fsync() calls to ensure data reaches disk
//   - Thread-safe operations with mutex protection
//   - Configurable enabling/disabling for performance scenarios
//
// Forensic Resistance:
//   - Multiple overwrite passes prevent magnetic residue analysis
//   - Random data pass prevents pattern-based recovery
//   - Immediate file deletion after overwriting
//   - No temporary copies or backup files created
//
type SecureFileDeleter struct {
	enabled       bool
	tempFiles     map[string]time.Time
	mu            sync.Mutex
	cleanupTicker *time.Ticker
	done          chan bool
}

// NewSecureFileDeleter creates a new secure file deleter with configurable security features.
//
// This constructor initializes a SecureFileDeleter instance and optionally starts
// a background cleanup goroutine for automatic temporary file management.
// When enabled, the deleter provides comprehensive anti-forensic capabilities.
//
// Background Services:
//   - Cleanup goroutine runs every 5 minutes when enabled
//   - Automatically removes temporary files older than 1 hour
//   - Graceful shutdown coordination through done channel
//
// Performance Considerations:
//   - When disabled, falls back to standard os.Remove() for performance
//   - Minimal overhead when secure deletion is not needed
//   - Background cleanup can be disabled by passing enabled=false
//
// Parameters:
//   enabled: Whether to enable secure deletion features (false = standard deletion)
//
// Returns:
//   *SecureFileDeleter: A new secure file deleter instance
//
// Thread Safety:
//   - Safe for concurrent use across multiple goroutines
//   - Internal mutex protects temporary file registry
//
// Complexity: O(1) - Simple initialization
func NewSecureFileDeleter(enabled bool) *SecureFileDeleter {
	sfd := &SecureFileDeleter{
		enabled:   enabled,
		tempFiles: make(map[string]time.Time),
		done:      make(chan bool),
	}
	
	if enabled {
		// Start cleanup goroutine for temporary files
		sfd.cleanupTicker = time.NewTicker(5 * time.Minute)
		go sfd.cleanupLoop()
	}
	
	return sfd
}

// RegisterTempFile registers a temporary file for automatic secure deletion.
//
// This method adds a file path to the temporary file registry, enabling
// automatic cleanup through the background cleanup process. Files are
// tracked with their registration timestamp for age-based cleanup.
//
// Cleanup Behavior:
//   - Files older than 1 hour are automatically deleted
//   - Cleanup occurs every 5 minutes via background goroutine
//   - All registered files are deleted during shutdown
//
// Security Considerations:
//   - Only operates when secure deletion is enabled
//   - Uses secure deletion for temporary file cleanup
//   - Thread-safe registration with mutex protection
//
// Parameters:
//   path: Absolute or relative path to the temporary file
//
// Thread Safety:
//   - Safe for concurrent calls from multiple goroutines
//   - Internal mutex protects the temporary file registry
//
// Complexity: O(1) - Simple map insertion
func (sfd *SecureFileDeleter) RegisterTempFile(path string) {
	if !sfd.enabled {
		return
	}
	
	sfd.mu.Lock()
	defer sfd.mu.Unlock()
	sfd.tempFiles[path] = time.Now()
}

// SecureDelete securely deletes a file using multi-pass overwriting for anti-forensic protection.
//
// This method implements a comprehensive 3-pass overwrite algorithm designed to
// prevent data recovery through magnetic residue analysis or specialized hardware.
// It ensures data destruction at both the logical and physical storage levels.
//
// Overwrite Algorithm:
//   Pass 1: Write zeros (0x00) to destroy logical data structure
//   Pass 2: Write ones (0xFF) to flip all magnetic domains
//   Pass 3: Write cryptographic random data to eliminate patterns
//
// Security Features:
//   - Forced disk synchronization (fsync) after each pass
//   - Handles files of any size with appropriate memory management
//   - Graceful degradation for non-existent or inaccessible files
//   - Uses crypto/rand for cryptographically secure random data
//
// Error Handling:
//   - Missing files are silently ignored (already deleted)
//   - Permission errors attempt standard deletion as fallback
//   - Write errors during overwrite terminate early but still delete
//   - Zero-length files skip overwrite and proceed to deletion
//
// Performance Characteristics:
//   - Time complexity: O(n) where n is file size
//   - Memory usage: O(file_size) for overwrite buffers
//   - Disk I/O: 3x file size plus sync operations
//
// Parameters:
//   path: Path to the file to be securely deleted
//
// Returns:
//   error: nil on success, error details on filesystem failures
//
// Complexity: O(n) where n is the file size in bytes
func (sfd *SecureFileDeleter) SecureDelete(path string) error {
	if !sfd.enabled {
		// Just remove normally if secure delete is disabled
		return os.Remove(path)
	}
	
	// Open file for writing
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		// File might not exist, just try to remove it
		os.Remove(path)
		return nil
	}
	defer file.Close()
	
	// Get file size
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		os.Remove(path)
		return nil
	}
	
	size := stat.Size()
	if size == 0 {
		file.Close()
		return os.Remove(path)
	}
	
	// Perform multiple overwrite passes using 3-pass algorithm
	// This follows security best practices for magnetic media data destruction
	passes := [][]byte{
		// Pass 1: All zeros (0x00) - Destroys logical file structure
		// Sets all bits to 0, eliminating file content at logical level
		make([]byte, size),
		
		// Pass 2: All ones (0xFF) - Flips all magnetic domains
		// Sets all bits to 1, ensuring magnetic domains are rewritten
		func() []byte {
			data := make([]byte, size)
			for i := range data {
				data[i] = 0xFF  // Binary: 11111111
			}
			return data
		}(),
		
		// Pass 3: Cryptographic random data - Eliminates patterns
		// Uses crypto/rand for cryptographically secure randomness
		// Prevents pattern-based data recovery techniques
		func() []byte {
			data := make([]byte, size)
			rand.Read(data)  // Cryptographically secure random bytes
			return data
		}(),
	}
	
	// Execute each overwrite pass sequentially
	for _, passData := range passes {
		// Seek to beginning of file for each pass
		if _, err := file.Seek(0, 0); err != nil {
			break  // Stop on seek errors but continue to deletion
		}
		
		// Write the pass data over the entire file
		if _, err := file.Write(passData); err != nil {
			break  // Stop on write errors but continue to deletion
		}
		
		// Force synchronous write to physical storage
		// This ensures data reaches the disk before next pass
		file.Sync()
	}
	
	// Close file handle before deletion
	file.Close()
	
	// Remove the file
	return os.Remove(path)
}

// cleanupLoop runs the background cleanup process for temporary file management.
//
// This goroutine performs periodic cleanup of registered temporary files,
// removing files that exceed the maximum age threshold. It coordinates
// with the shutdown process through channel communication.
//
// Cleanup Schedule:
//   - Runs every 5 minutes via time.Ticker
//   - Processes all registered temporary files each cycle
//   - Terminates gracefully on shutdown signal
//
// Lifecycle Management:
//   - Started automatically when SecureFileDeleter is enabled
//   - Terminated via done channel during shutdown
//   - Cleanup ticker is managed by the calling code
//
// Error Handling:
//   - Individual file deletion errors are ignored
//   - Cleanup continues even if some files cannot be deleted
//   - Registry is updated regardless of deletion success
//
// Thread Safety:
//   - Coordinates with main thread through channels
//   - File registry access is mutex-protected
//
// Complexity: O(1) - Goroutine lifecycle management
func (sfd *SecureFileDeleter) cleanupLoop() {
	for {
		select {
		case <-sfd.cleanupTicker.C:
			sfd.cleanupOldTempFiles()
		case <-sfd.done:
			return
		}
	}
}

// cleanupOldTempFiles removes temporary files that exceed the maximum age threshold.
//
// This method iterates through all registered temporary files and securely
// deletes those older than 1 hour. It maintains the temporary file registry
// by removing processed entries.
//
// Age Calculation:
//   - Uses current time minus 1 hour as cutoff threshold
//   - Compares against file registration timestamp (not filesystem timestamp)
//   - Processes all files in a single pass
//
// Cleanup Process:
//   - Identifies files older than threshold
//   - Performs secure deletion on qualifying files
//   - Removes processed files from registry
//   - Continues processing even if individual deletions fail
//
// Error Handling:
//   - Individual deletion failures are silently ignored
//   - Registry cleanup proceeds regardless of deletion success
//   - Ensures registry doesn't accumulate stale entries
//
// Thread Safety:
//   - Acquires mutex lock for entire operation
//   - Protects both registry access and modification
//
// Complexity: O(n) where n is the number of registered temporary files
func (sfd *SecureFileDeleter) cleanupOldTempFiles() {
	sfd.mu.Lock()
	defer sfd.mu.Unlock()
	
	cutoff := time.Now().Add(-1 * time.Hour)
	
	for path, createdAt := range sfd.tempFiles {
		if createdAt.Before(cutoff) {
			sfd.SecureDelete(path)
			delete(sfd.tempFiles, path)
		}
	}
}

// Shutdown gracefully terminates the secure file deleter and performs final cleanup.
//
// This method coordinates the shutdown of all background processes and ensures
// complete cleanup of registered temporary files. It provides comprehensive
// resource cleanup for secure shutdown scenarios.
//
// Shutdown Process:
//   1. Stop the background cleanup ticker
//   2. Signal the cleanup goroutine to terminate
//   3. Securely delete all remaining temporary files
//   4. Clear the temporary file registry
//
// Background Process Coordination:
//   - Stops cleanup ticker to prevent new cleanup cycles
//   - Sends shutdown signal through done channel
//   - Non-blocking send prevents deadlock scenarios
//
// Final Cleanup:
//   - Processes all files remaining in registry
//   - Uses secure deletion for each file
//   - Resets registry to prevent resource leaks
//
// Error Handling:
//   - Individual file deletion errors are ignored
//   - Shutdown completes even if some files cannot be deleted
//   - Graceful degradation when secure deletion is disabled
//
// Thread Safety:
//   - Mutex protection for registry access
//   - Safe coordination with background goroutine
//
// Complexity: O(n) where n is the number of registered temporary files
func (sfd *SecureFileDeleter) Shutdown() {
	if !sfd.enabled {
		return
	}
	
	// Stop cleanup loop
	if sfd.cleanupTicker != nil {
		sfd.cleanupTicker.Stop()
	}
	
	select {
	case sfd.done <- true:
	default:
	}
	
	// Clean up remaining temp files
	sfd.mu.Lock()
	defer sfd.mu.Unlock()
	
	for path := range sfd.tempFiles {
		sfd.SecureDelete(path)
	}
	sfd.tempFiles = make(map[string]time.Time)
}

// MemoryProtection provides secure memory handling utilities for sensitive data.
//
// This type implements memory protection techniques designed to prevent
// sensitive data from lingering in system memory where it could be
// recovered by attackers or forensic analysis tools.
//
// Protection Mechanisms:
//   - Explicit memory clearing using zero-fill operations
//   - Forced garbage collection to clear Go runtime memory
//   - Configurable enabling/disabling for performance scenarios
//
// Security Considerations:
//   - Protects against memory dump analysis
//   - Reduces window for sensitive data recovery
//   - Coordinates with Go garbage collector for thorough cleanup
//
// Limitations:
//   - Cannot prevent all memory residue (OS swap files, etc.)
//   - Effectiveness depends on Go runtime memory management
//   - No protection against hardware-level attacks (cold boot, etc.)
//
type MemoryProtection struct {
	enabled bool
}

// NewMemoryProtection creates a new memory protection instance with configurable security.
//
// This constructor initializes a MemoryProtection instance that can be
// enabled or disabled based on security requirements and performance
// considerations.
//
// Configuration:
//   - When enabled: Provides active memory clearing and garbage collection
//   - When disabled: No-op operations for maximum performance
//
// Parameters:
//   enabled: Whether to enable memory protection features
//
// Returns:
//   *MemoryProtection: A new memory protection instance
//
// Complexity: O(1) - Simple initialization
func NewMemoryProtection(enabled bool) *MemoryProtection {
	return &MemoryProtection{enabled: enabled}
}

// ClearSensitiveData securely clears sensitive data from memory to prevent recovery.
//
// This method implements comprehensive memory clearing techniques to minimize
// the window of opportunity for sensitive data recovery from system memory.
// It combines explicit data clearing with garbage collection coordination.
//
// Clearing Process:
//   1. Zero-fill the entire data buffer byte by byte
//   2. Trigger immediate garbage collection
//   3. Trigger second garbage collection for thoroughness
//
// Security Features:
//   - Explicit zero-fill prevents simple memory scanning
//   - Double garbage collection clears Go runtime memory
//   - Immediate execution reduces exposure window
//
// Limitations:
//   - Cannot clear all copies (runtime may have internal copies)
//   - No protection against OS swap files or hibernation
//   - Memory pages may still exist in physical RAM
//
// Performance Impact:
//   - O(n) time complexity for buffer clearing
//   - Garbage collection pause may affect application responsiveness
//   - Disabled mode has no performance impact
//
// Parameters:
//   data: Byte slice containing sensitive data to be cleared
//
// Thread Safety:
//   - Safe for concurrent use on different data buffers
//   - Garbage collection is globally synchronized
//
// Complexity: O(n) where n is the length of the data buffer
func (mp *MemoryProtection) ClearSensitiveData(data []byte) {
	if !mp.enabled {
		return
	}
	
	// Clear the data
	for i := range data {
		data[i] = 0
	}
	
	// Additional protection: trigger garbage collection
	runtime.GC()
	runtime.GC() // Call twice to be more thorough
}

// WipeFast zero-fills data without forcing a garbage collection pass.
// It is the primitive buffer.Buffer.Neuter calls; ClearSensitiveData is
// the variant that also runs runtime.GC() twice.
func (mp *MemoryProtection) WipeFast(data []byte) {
	if !mp.enabled {
		return
	}
	for i := range data {
		data[i] = 0
	}
}


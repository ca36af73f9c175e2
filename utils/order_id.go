package utils

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var mu sync.Mutex
var seededRand *rand.Rand

func init() {
	seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))
}

// GenerateOrderID returns a unique order id for a user's ledger movement.
func GenerateOrderID(userID uint) string {
	mu.Lock()
	defer mu.Unlock()

	nowNano := time.Now().UnixNano()
	nanoPart := nowNano % 1000000

	randPart := seededRand.Intn(900) + 100

	return fmt.Sprintf("VB-%06d%03d%d", nanoPart, randPart, userID)
}

// GenerateSubmissionReference returns an opaque reference for a task
// submission, stable across the live table and the archive.
func GenerateSubmissionReference() string {
	return "SUB-" + strings.ToUpper(uuid.NewString()[:18])
}

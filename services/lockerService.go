package services

import (
	"errors"
	"sync"
	"time"

	"infini-manager/utility/logger"

	"github.com/go-redis/redis/v7"
	uuid "github.com/satori/go.uuid"
)

// ILocker ... Token lock serializing state-changing operations per batch id
type ILocker interface {
	AcquireLock(identifier string, ttl time.Duration) (string, error)
	ReleaseLock(identifier string, token string) error
}

// LockerService ... Redis backed lock, usable across service instances
type LockerService struct {
	Client *redis.Client
}

func NewLockerService(client *redis.Client) *LockerService {
	return &LockerService{Client: client}
}

// AcquireLock ... Obtains the lock for an identifier, returns the release token
func (service *LockerService) AcquireLock(identifier string, ttl time.Duration) (string, error) {
	token := uuid.NewV4().String()
	acquired, err := service.Client.SetNX(identifier, token, ttl).Result()
	if err != nil {
		logger.Error("Error occured while obtaining lock for %s : %s", identifier, err)
		return "", err
	}
	if !acquired {
		return "", errors.New("lock is held by another operation")
	}
	return token, nil
}

// ReleaseLock ... Returns the lock, only when the token matches the holder
func (service *LockerService) ReleaseLock(identifier string, token string) error {
	currentToken, err := service.Client.Get(identifier).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		logger.Error("Error occured while releasing lock for %s : %s", identifier, err)
		return err
	}
	if currentToken != token {
		return errors.New("lock token does not match holder")
	}
	return service.Client.Del(identifier).Err()
}

// MemoryLocker ... In-process lock for single node deployments and tests
type MemoryLocker struct {
	mutex  sync.Mutex
	tokens map[string]string
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{tokens: map[string]string{}}
}

func (locker *MemoryLocker) AcquireLock(identifier string, ttl time.Duration) (string, error) {
	locker.mutex.Lock()
	defer locker.mutex.Unlock()
	if _, held := locker.tokens[identifier]; held {
		return "", errors.New("lock is held by another operation")
	}
	token := uuid.NewV4().String()
	locker.tokens[identifier] = token
	return token, nil
}

func (locker *MemoryLocker) ReleaseLock(identifier string, token string) error {
	locker.mutex.Lock()
	defer locker.mutex.Unlock()
	if currentToken, held := locker.tokens[identifier]; held && currentToken != token {
		return errors.New("lock token does not match holder")
	}
	delete(locker.tokens, identifier)
	return nil
}

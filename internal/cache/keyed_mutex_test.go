package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type KeyedMutexTestSuite struct {
	suite.Suite
}

func TestKeyedMutexSuite(t *testing.T) {
	suite.Run(t, new(KeyedMutexTestSuite))
}

func (suite *KeyedMutexTestSuite) TestSerializesSameKey() {
	locks := newKeyedMutex()

	var (
		wg      sync.WaitGroup
		counter int
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			unlock := locks.Lock("A|*|*|*|*|*")
			defer unlock()

			counter++
		}()
	}

	wg.Wait()

	suite.Equal(50, counter)
	suite.Equal(0, locks.size())
}

func (suite *KeyedMutexTestSuite) TestDistinctKeysDoNotBlock() {
	locks := newKeyedMutex()

	unlockA := locks.Lock("A")
	unlockB := locks.Lock("B")

	suite.Equal(2, locks.size())

	unlockA()
	unlockB()

	suite.Equal(0, locks.size())
}

func (suite *KeyedMutexTestSuite) TestLockAllOverlappingSets() {
	locks := newKeyedMutex()

	var (
		wg      sync.WaitGroup
		counter int
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)

		keys := []string{"A", "B", "A"}
		if i%2 == 0 {
			keys = []string{"B", "A"}
		}

		go func() {
			defer wg.Done()

			unlock := locks.LockAll(keys)
			defer unlock()

			counter++
		}()
	}

	wg.Wait()

	suite.Equal(50, counter)
	suite.Equal(0, locks.size())
}

func (suite *KeyedMutexTestSuite) TestLockAllBlocksSingleKeyWriter() {
	locks := newKeyedMutex()

	unlock := locks.LockAll([]string{"B", "A"})

	acquired := make(chan struct{})

	go func() {
		defer locks.Lock("A")()
		close(acquired)
	}()

	select {
	case <-acquired:
		suite.Fail("lock on A acquired while held by LockAll")
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	<-acquired

	suite.Eventually(func() bool { return locks.size() == 0 }, time.Second, 5*time.Millisecond)
}

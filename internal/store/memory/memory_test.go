package memory

import (
	"testing"

	"serotonyl.ru/mainquest/internal/store"
	"serotonyl.ru/mainquest/internal/store/storetest"
)

func TestStoreContract(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New()
	})
}

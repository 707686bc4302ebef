// service содержит бизнес-логику: регистрацию, вход, выдачу профиля
// и проверку готовности хранилища.
//
// Основные аспекты:
//   - Service не хранит состояние запроса; экземпляр безопасен для конкурентного
//     использования при условии, что хранилище и кэш потокобезопасны.
//   - Любой сбой коллабораторов (хранилище, хэшер, кодек токенов) превращается
//     здесь ровно в одну *errors.Error; сырые ошибки нижних слоёв наружу не уходят.
//   - Неудачный вход по несуществующему email и по неверному паролю неразличимы
//     снаружи (одно сообщение, сопоставимое время ответа), но различаются в логах.
package service

import (
	"sync"
	"time"

	"github.com/pribylovaa/authgate/internal/cache"
	"github.com/pribylovaa/authgate/internal/models"
	"github.com/pribylovaa/authgate/internal/storage"
)

// Сообщения, которые видит клиент.
const (
	msgUserExists         = "User already exists"
	msgInvalidCredentials = "Invalid credentials"
	msgUserNotFound       = "user not found"
)

// Hasher - хэширование и проверка паролей (*password.Hasher).
type Hasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) (bool, error)
}

// Issuer - выпуск токенов (*token.Codec).
type Issuer interface {
	Issue(subject string) (string, models.Claims, error)
}

// Service описывает бизнес-логику сервиса.
type Service struct {
	storage storage.Storage
	hasher  Hasher
	issuer  Issuer
	pcache  cache.ProfileCache // может быть nil, если кэш не сконфигурирован
	now     func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, hasher Hasher, issuer Issuer) *Service {
	return &Service{
		storage: st,
		hasher:  hasher,
		issuer:  issuer,
		now:     time.Now,
	}
}

// SetProfileCache устанавливает кэш профилей (опционально).
func (s *Service) SetProfileCache(c cache.ProfileCache) {
	s.pcache = c
}

// dummyDigest - хэш фиксированного пароля для сравнения при неизвестном email.
// Считается один раз; при сбое возвращает пустую строку.
func (s *Service) dummyDigest() string {
	s.dummyOnce.Do(func() {
		if h, err := s.hasher.Hash("authgate-timing-equalizer"); err == nil {
			s.dummyHash = h
		}
	})

	return s.dummyHash
}

package scraper

import (
	"context"
	"errors"
	"testing"

	"github.com/gradia-project/gradia-parser/internal/models"
)

func testPoolConfig() models.PoolConfig {
	return models.PoolConfig{MaxHandles: 2, AdmissionSlots: 2, Workers: 2}
}

func TestService_ParseTimetable(t *testing.T) {
	stub := &stubEngine{}
	service := NewService(stub, testPoolConfig(), testScrapeConfig())
	defer service.Shutdown()

	entries, err := service.ParseTimetable(context.Background(), "https://everytime.kr/@abcd1234")
	if err != nil {
		t.Fatalf("ParseTimetable失败: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("期望1条记录, 实际 %d", len(entries))
	}

	// 整条链路走完后实例全部归还
	if service.Pool().ActiveCount() != 0 {
		t.Errorf("在租实例数应为0, 实际 %d", service.Pool().ActiveCount())
	}
	created, destroyed, _, _ := stub.snapshot()
	if created != destroyed {
		t.Errorf("创建数 %d 与销毁数 %d 不一致", created, destroyed)
	}
}

func TestService_ParseTimetable_ValidationError(t *testing.T) {
	stub := &stubEngine{}
	service := NewService(stub, testPoolConfig(), testScrapeConfig())
	defer service.Shutdown()

	_, err := service.ParseTimetable(context.Background(), "ftp://everytime.kr/@abcd1234")
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("期望*ValidationError, 实际 %v", err)
	}
}

func TestService_ShutdownRejectsNewRequests(t *testing.T) {
	stub := &stubEngine{}
	service := NewService(stub, testPoolConfig(), testScrapeConfig())
	service.Shutdown()

	_, err := service.ParseTimetable(context.Background(), "https://everytime.kr/@abcd1234")
	if !errors.Is(err, ErrBridgeClosed) {
		t.Errorf("关停后期望ErrBridgeClosed, 实际 %v", err)
	}
}

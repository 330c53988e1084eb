package app

import "hotel_detail/internal/domain"

// Fallback sections served when a request names no hotel. The editor uses
// them to seed an empty form.

const sampleBookingGuide = `■ 예약 및 문의
  - 예약 전화: 000-0000-0000 (09:00-18:00, 공휴일 휴무)
  - 이메일 문의: booking@example.com

■ 예약 확인 안내
  - 예약 확정 후 예약 확인 이메일이 발송됩니다.
  - 체크인 시 예약자 본인 확인을 위해 신분증을 반드시 지참해주세요.

■ 체크인/체크아웃 안내
  - 체크인: 오후 3시 이후
  - 체크아웃: 오전 11시 이전
  - 얼리 체크인 또는 레이트 체크아웃은 사전 문의 필요

■ 결제 안내
  - 예약 시 신용카드 정보가 필요할 수 있습니다.
  - 현장에서 체크인 시 전액 결제 또는 카드 승인이 진행됩니다.`

func SampleBooking() domain.Booking {
	return domain.Booking{PurchaseGuide: sampleBookingGuide}
}

func SampleCancelPolicy() domain.CancelPolicy {
	return domain.CancelPolicy{
		BeforeCheckIn: []domain.CancelRule{
			{Days: "체크인 7일 전", Rate: "객실요금 100% 환불"},
			{Days: "체크인 6일 전", Rate: "객실요금 90% 환불"},
			{Days: "체크인 5일 전", Rate: "객실요금 80% 환불"},
			{Days: "체크인 4일 전", Rate: "객실요금 70% 환불"},
			{Days: "체크인 3일 전", Rate: "객실요금 50% 환불"},
			{Days: "체크인 2일 전", Rate: "객실요금 30% 환불"},
			{Days: "체크인 1일 전", Rate: "객실요금 10% 환불"},
		},
		AfterCheckIn: []domain.CancelRule{
			{Days: "체크인 당일", Rate: "환불 불가"},
			{Days: "숙박 중 퇴실", Rate: "환불 불가"},
		},
		AdditionalPolicy: "- 예약 변경은 취소 후 재예약 가능합니다.\n- 천재지변 및 기상 악화에 의한 취소는 별도 문의 바랍니다.",
		Description:      "취소 및 환불 규정을 안내드립니다. 예약 취소 시점에 따라 환불 금액이 상이합니다.",
		Notes:            "상기 취소 규정은 일반 예약에 적용되며, 프로모션 상품의 경우 별도 규정이 적용될 수 있습니다.",
	}
}

func SamplePricing() domain.Pricing {
	return domain.Pricing{
		AdditionalChargesInfo: "체크인 시 보증금 50,000원이 필요합니다.",
		Lodges: []domain.Lodge{{
			Name: "샘플 호텔",
			Rooms: []domain.RoomPrice{
				{RoomType: "스탠다드", View: "시티뷰", Prices: map[string]int64{"weekday": 100000, "friday": 120000, "saturday": 150000}},
				{RoomType: "디럭스", View: "시티뷰", Prices: map[string]int64{"weekday": 150000, "friday": 180000, "saturday": 220000}},
			},
		}},
		DayTypes: domain.DefaultDayTypes(),
	}
}

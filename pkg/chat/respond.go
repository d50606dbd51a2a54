// Package chat maps free-text follow-up questions to canned responses and
// formats the computed result into the structured summary card.
//
// Respond is a decision table, not free-form generation: identical
// (query, result) inputs always produce the identical response. Transcript
// appension is the caller's responsibility.
package chat

import (
	"fmt"
	"strings"

	"github.com/acrolabs/counsel/pkg/schema"
)

// rule is one entry of the keyword decision table. Keywords are substring
// tests against the lowercased query; the first matching rule wins.
type rule struct {
	name     string
	keywords []string
	response string
}

// rules is evaluated in order: documents, refund, gambling/investment,
// cost, duration, credit. The order is part of the observable contract —
// "기간이 얼마나 걸리나요" matches the cost rule via "얼마" before the
// duration rule is ever reached.
var rules = []rule{
	{
		name:     "documents",
		keywords: []string{"서류"},
		response: "**기본 필요 서류**\n\n" +
			"- 신분증 사본\n" +
			"- 주민등록등본\n" +
			"- 소득증빙서류 (급여명세서/소득금액증명원)\n" +
			"- 부채증명서 (금융기관별)\n\n" +
			"**아크로 서비스 포함사항:** 부채증명서 발급대행을 무료로 해드립니다.",
	},
	{
		name:     "refund",
		keywords: []string{"환불", "기각"},
		response: "**기각시 100% 환불 보장**\n\n" +
			"저희 아크로는 AI 정밀 분석을 통해 기각 확률을 최소화합니다.\n\n" +
			"만약 저희 과실로 기각될 경우 **전액 환불**해 드립니다. (단, 채무자 귀책사유 제외)",
	},
	{
		name:     "gambling",
		keywords: []string{"도박", "주식", "코인"},
		response: "**도박/투자 빚도 가능합니다!**\n\n" +
			"서울회생법원 실무준칙(제32조)에 따르면:\n\n" +
			"- 도박/투자 손실금은 **청산가치에서 제외**되는 경우가 많습니다\n" +
			"- 단, 반성문과 갱생계획이 필요합니다\n\n" +
			"저희 전문가들이 법원 설득 논리를 만들어 드립니다.",
	},
	{
		name:     "cost",
		keywords: []string{"비용", "가격", "얼마"},
		response: "**아크로 올인원 패키지: 190만원**\n\n" +
			"포함 항목:\n" +
			"- 모든 서류 작성/접수\n" +
			"- 무제한 보정명령 대응 (추가비용 0원)\n" +
			"- AI 맞춤 진술서 작성\n" +
			"- 10개월 무이자 분납 가능\n\n" +
			"타 사무소 '150만원~' 광고 주의! 보정명령 1회당 30만원 추가됩니다.",
	},
	{
		name:     "duration",
		keywords: []string{"기간", "얼마나 걸"},
		response: "**회생 진행 기간**\n\n" +
			"- 서류 준비: 약 1-2주\n" +
			"- 법원 접수 후 개시결정: 1-2개월\n" +
			"- 인가결정: 접수 후 4-6개월\n" +
			"- 변제기간: 36개월 (3년)\n\n" +
			"총 약 4년 정도 소요됩니다.",
	},
	{
		name:     "credit",
		keywords: []string{"신용", "등급"},
		response: "**회생과 신용등급**\n\n" +
			"- 회생 신청시 신용등급이 낮아집니다\n" +
			"- 하지만 이미 연체가 있다면 큰 차이 없습니다\n" +
			"- **인가결정 후 5년** 지나면 기록 삭제\n" +
			"- 변제 완료 후 신용회복 가능",
	},
}

// genericReferral is returned when no keyword matches and no result is
// available to ground a rate-based answer.
const genericReferral = "문의주셔서 감사합니다.\n\n" +
	"더 정확한 상담을 위해 텔레그램이나 전화상담을 이용해주세요.\n" +
	"담당 변호사가 직접 답변드리겠습니다!"

// Rate-branch guidance, selected by three disjoint repayment-rate
// thresholds: < 20, 20–50, ≥ 50.
const (
	lowRateGuidance = "변제율이 낮아 **회생 가능성이 높습니다.** " +
		"자세한 상담을 통해 최적의 방안을 찾아드리겠습니다."
	midRateGuidance = "적정한 변제율입니다. 법원 인가 가능성이 높으며, " +
		"추가 최적화 여지도 있습니다."
	highRateGuidance = "변제율이 다소 높지만, 재산/소득 구성에 따라 조정 가능합니다. " +
		"자세한 상담을 권장드립니다."
)

// Respond answers a free-text query from the fixed keyword table, falling
// back to rate-aware guidance when a Result is present and to a generic
// referral otherwise. Pure and total: it never mutates its inputs and always
// returns a non-empty response.
func Respond(query string, result *schema.Result) string {
	q := strings.ToLower(query)

	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(q, kw) {
				return r.response
			}
		}
	}

	if result != nil {
		rate := result.RepaymentRate
		var guidance string
		switch {
		case rate < 20:
			guidance = lowRateGuidance
		case rate < 50:
			guidance = midRateGuidance
		default:
			guidance = highRateGuidance
		}
		return fmt.Sprintf("고객님의 예상 변제율 **%.1f%%**를 기준으로 말씀드리면,\n\n%s\n\n더 궁금하신 점이 있으시면 물어봐주세요!", rate, guidance)
	}

	return genericReferral
}

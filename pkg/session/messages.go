package session

// Canned assistant copy. The wording is part of the observable contract and
// is covered by transcript tests; change it only together with them.
const (
	msgGreeting = "안녕하세요! 👋 아크로 AI 상담사입니다.\n\n" +
		"몇 가지 질문에 답해주시면 **개인회생 자격과 예상 변제액**을 바로 알려드릴게요.\n\n" +
		"약 3분 정도 소요됩니다."

	msgStartAck = "좋아요! 그럼 시작해볼게요. 😊"

	msgServerConnectFailed = "서버 연결에 실패했습니다. 잠시 후 다시 시도해주세요."
	msgStepLoadFailed      = "단계를 불러오는데 실패했습니다."
	msgSubmitFailed        = "죄송합니다. 오류가 발생했습니다. 다시 시도해주세요."
	msgComputeFailed       = "결과 계산 중 오류가 발생했습니다. 다시 시도해주세요."

	msgAnalysisDone = "분석이 완료되었습니다."

	msgFormSubmitted = "재산 정보 입력 완료"

	msgInvitation = "위 결과는 입력하신 정보를 바탕으로 한 예상치입니다.\n\n" +
		"궁금하신 점을 자유롭게 물어봐주세요! (비용, 기간, 서류, 신용등급 등)"
)

// ComputeCaptions are cycled in the transcript footer while the result
// computation is in flight, one per 1.2 seconds.
var ComputeCaptions = []string{
	"재산 정보 확인 중...",
	"채무 구성 분석 중...",
	"월 가용소득 계산 중...",
	"변제계획 수립 중...",
	"최종 결과 정리 중...",
}

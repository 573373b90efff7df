package i18n

// MessageKey identifies a canned user-facing message.
type MessageKey string

const (
	KeyGreeting      MessageKey = "greeting"
	KeyButtonPlans   MessageKey = "button_plans"
	KeyButtonTimes   MessageKey = "button_times"
	KeyButtonHuman   MessageKey = "button_human"
	KeyHandoffPrompt MessageKey = "handoff_prompt"
	KeyHandoffOK     MessageKey = "handoff_ok"
	KeyAudioWait     MessageKey = "audio_wait"
	KeyImageWait     MessageKey = "image_wait"
	KeyPlans         MessageKey = "plans"
	KeyTimes         MessageKey = "times"
	KeyDocumentAck   MessageKey = "document_ack"
	KeySelectionAck  MessageKey = "selection_ack"
	KeyFallback      MessageKey = "fallback"

	KeyErrGeneric       MessageKey = "err_generic"
	KeyErrTimeout       MessageKey = "err_timeout"
	KeyErrTranscription MessageKey = "err_transcription"
	KeyErrImage         MessageKey = "err_image"
	KeyErrMediaTooLarge MessageKey = "err_media_too_large"
	KeyErrRateLimited   MessageKey = "err_rate_limited"
	KeyErrUnsupported   MessageKey = "err_unsupported"
)

// Tr returns the catalog text for (key, lang). Every key carries a complete
// English row; a lang without its own row falls back to English, so the
// result is never empty for a known key.
func Tr(key MessageKey, lang Lang) string {
	row, ok := catalog[key]
	if !ok {
		return ""
	}
	if text, ok := row[lang]; ok {
		return text
	}
	return row[English]
}

var catalog = map[MessageKey]map[Lang]string{
	KeyGreeting: {
		Spanish:    "¡Hola! ¿En qué puedo ayudarte hoy en temas dentales?\n\nElige una opción:",
		English:    "Hi! How can I help you today with dental topics?\n\nChoose an option:",
		Portuguese: "Olá! Como posso ajudar hoje com temas odontológicos?\n\nEscolha uma opção:",
		French:     "Salut ! Comment puis-je vous aider aujourd’hui en dentaire ?\n\nChoisissez une option :",
		Hindi:      "नमस्ते! मैं दंत विषयों में आज आपकी कैसे मदद कर सकता हूँ?\n\nएक विकल्प चुनें:",
		Arabic:     "مرحبًا! كيف يمكنني مساعدتك اليوم في مواضيع طب الأسنان؟\n\nاختر خيارًا:",
		Russian:    "Привет! Чем могу помочь по стоматологии сегодня?\n\nВыберите вариант:",
		Japanese:   "こんにちは！歯科のことで今日はどうお手伝いできますか？\n\nオプションを選んでください：",
		Chinese:    "你好！今天我如何在牙科方面帮助你？\n\n请选择：",
	},
	KeyButtonPlans: {
		Spanish:    "Planes y precios",
		English:    "Plans & pricing",
		Portuguese: "Planos e preços",
		French:     "Forfaits et prix",
		Hindi:      "प्लान और मूल्य",
		Arabic:     "الخطط والأسعار",
		Russian:    "Тарифы и цены",
		Japanese:   "プランと料金",
		Chinese:    "方案与价格",
	},
	KeyButtonTimes: {
		Spanish:    "Tiempos",
		English:    "Turnaround times",
		Portuguese: "Prazos",
		French:     "Délais",
		Hindi:      "समय",
		Arabic:     "المدد",
		Russian:    "Сроки",
		Japanese:   "納期",
		Chinese:    "交付时间",
	},
	KeyButtonHuman: {
		Spanish:    "Hablar con humano",
		English:    "Talk to a human",
		Portuguese: "Falar com humano",
		French:     "Parler à un humain",
		Hindi:      "मानव से बात",
		Arabic:     "التحدث إلى موظف",
		Russian:    "Связаться с человеком",
		Japanese:   "担当者と話す",
		Chinese:    "转人工",
	},
	KeyHandoffPrompt: {
		Spanish:    "👤 Te conecto con un asesor. Envía por favor:\n• Nombre\n• Tema (implante, zirconia, urgencia)\n• Horario preferido y teléfono si es otro",
		English:    "👤 I’ll connect you with a human. Please send:\n• Name\n• Topic (implant, zirconia, urgent)\n• Preferred time and phone if different",
		Portuguese: "👤 Vou te conectar com um atendente. Envie:\n• Nome\n• Tema (implante, zircônia, urgência)\n• Horário preferido e telefone se for outro",
		French:     "👤 Je vous mets en relation avec un conseiller. Envoyez :\n• Nom\n• Sujet (implant, zircone, urgence)\n• Horaire préféré et téléphone si différent",
		Hindi:      "👤 मैं आपको मानव एजेंट से जोड़ रहा हूँ। कृपया भेजें:\n• नाम\n• विषय (इम्प्लांट, ज़िरकोनिया, आपात)\n• पसंदीदा समय और फोन (यदि अलग हो)",
		Arabic:     "👤 سأوصلك بمستشار بشري. أرسل من فضلك:\n• الاسم\n• الموضوع (زرعات، زركونيا، طارئ)\n• الوقت المفضل ورقم الهاتف إن كان مختلفًا",
		Russian:    "👤 Соединяю с оператором. Отправьте:\n• Имя\n• Тема (имплант, цирконий, срочно)\n• Удобное время и телефон, если другой",
		Japanese:   "👤 担当者へお繋ぎします。以下を送ってください：\n• お名前\n• 内容（インプラント、ジルコニア、至急 など）\n• 希望時間と別連絡先があれば番号",
		Chinese:    "👤 我将为你转人工。请发送：\n• 姓名\n• 主题（种植体、氧化锆、紧急等）\n• 方便时间和如果不同的联系电话",
	},
	KeyHandoffOK: {
		Spanish:    "✅ Tu solicitud fue registrada; un asesor te contactará pronto.",
		English:    "✅ Thanks. Your request was recorded; an agent will contact you soon.",
		Portuguese: "✅ Obrigado. Sua solicitação foi registrada; um atendente entrará em contato.",
		French:     "✅ Merci. Votre demande a été enregistrée ; un conseiller vous contactera bientôt.",
		Hindi:      "✅ धन्यवाद। आपकी अनुरोध दर्ज हो गया है; एजेंट जल्द संपर्क करेगा।",
		Arabic:     "✅ شكرًا. تم تسجيل طلبك، سيتواصل معك مستشار قريبًا.",
		Russian:    "✅ Готово. Запрос сохранён; с вами свяжется оператор.",
		Japanese:   "✅ 受付しました。担当者からご連絡します。",
		Chinese:    "✅ 已登记请求；客服稍后联系你。",
	},
	KeyAudioWait: {
		Spanish:    "🎙️ Recibí tu audio, lo estoy transcribiendo…",
		English:    "🎙️ Got your audio, transcribing…",
		Portuguese: "🎙️ Recebi seu áudio, transcrevendo…",
		French:     "🎙️ Audio reçu, transcription en cours…",
		Hindi:      "🎙️ आपका ऑडियो मिला, ट्रांसक्राइब कर रहा हूँ…",
		Arabic:     "🎙️ تم استلام المقطع الصوتي، جارٍ التفريغ…",
		Russian:    "🎙️ Получил аудио, делаю расшифровку…",
		Japanese:   "🎙️ 音声を受け取りました。文字起こし中…",
		Chinese:    "🎙️ 收到你的语音，正在转写…",
	},
	KeyImageWait: {
		Spanish:    "🖼️ Recibí tu imagen, la estoy analizando…",
		English:    "🖼️ Got your image, analyzing…",
		Portuguese: "🖼️ Recebi sua imagem, analisando…",
		French:     "🖼️ Image reçue, analyse en cours…",
		Hindi:      "🖼️ आपकी छवि मिली, विश्लेषण कर रहा हूँ…",
		Arabic:     "🖼️ تم استلام الصورة، جارٍ التحليل…",
		Russian:    "🖼️ Изображение получено, анализирую…",
		Japanese:   "🖼️ 画像を受け取りました。分析中…",
		Chinese:    "🖼️ 收到你的图片，正在分析…",
	},
	KeyPlans: {
		Spanish:    "💳 *Planes*: Básico $50/mes · Pro $99/mes · Enterprise $299/mes.\n¿Deseas más detalles?",
		English:    "💳 *Plans*: Basic $50/mo · Pro $99/mo · Enterprise $299/mo.\nWant more details?",
		Portuguese: "💳 *Planos*: Básico $50/mês · Pro $99/mês · Enterprise $299/mês.\nQuer mais detalhes?",
	},
	KeyTimes: {
		Spanish:    "⏱️ *Tiempos típicos*: Zirconia 3–5 días, Metal-cerámica 5–7, Implantes 7–10.",
		English:    "⏱️ *Typical times*: Zirconia 3–5 days, PFM 5–7, Implant cases 7–10.",
		Portuguese: "⏱️ *Prazos típicos*: Zircônia 3–5 dias, Metalocerâmica 5–7, Implantes 7–10.",
	},
	KeyDocumentAck: {
		Spanish:    "📄 Recibí tu archivo PDF. Aquí va un resumen:",
		English:    "📄 Got your PDF. Here is a summary:",
		Portuguese: "📄 Recebi seu PDF. Segue um resumo:",
	},
	KeySelectionAck: {
		Spanish:    "Recibí tu selección.",
		English:    "Got your selection.",
		Portuguese: "Recebi sua seleção.",
	},
	KeyFallback: {
		Spanish:    "Recibí tu mensaje. Por ahora entiendo mejor texto 😊",
		English:    "I received your message. For now I understand text best 😊",
		Portuguese: "Recebi sua mensagem. Por enquanto entendo melhor texto 😊",
		French:     "J’ai bien reçu votre message. Pour l’instant je comprends mieux le texte 😊",
		Hindi:      "मुझे आपका संदेश मिला। अभी के लिए मैं पाठ बेहतर समझता हूँ 😊",
		Arabic:     "تلقيت رسالتك. حاليًا أفهم النصوص بشكل أفضل 😊",
		Russian:    "Сообщение получил. Пока лучше всего понимаю текст 😊",
		Japanese:   "メッセージを受け取りました。今のところ文章が一番得意です 😊",
		Chinese:    "我收到了你的消息。目前我最擅长处理文字 😊",
	},
	KeyErrGeneric: {
		Spanish:    "Hubo un error temporal. Inténtalo de nuevo, por favor.",
		English:    "Something went wrong on our side. Please try again.",
		Portuguese: "Ocorreu um erro temporário. Tente novamente, por favor.",
		French:     "Une erreur temporaire est survenue. Veuillez réessayer.",
		Russian:    "Произошла временная ошибка. Попробуйте ещё раз.",
	},
	KeyErrTimeout: {
		Spanish:    "El asistente tardó demasiado en responder. Inténtalo de nuevo en un momento.",
		English:    "The assistant took too long to answer. Please try again in a moment.",
		Portuguese: "O assistente demorou demais para responder. Tente novamente em instantes.",
	},
	KeyErrTranscription: {
		Spanish:    "No pude transcribir el audio. ¿Puedes escribir un resumen?",
		English:    "I couldn’t transcribe the audio. Could you type a summary?",
		Portuguese: "Não consegui transcrever o áudio. Pode escrever um resumo?",
	},
	KeyErrImage: {
		Spanish:    "Lo siento, hubo un problema analizando la imagen.",
		English:    "Sorry, there was a problem analyzing the image.",
		Portuguese: "Desculpe, houve um problema ao analisar a imagem.",
	},
	KeyErrMediaTooLarge: {
		Spanish:    "El archivo es demasiado grande para procesarlo. ¿Puedes enviar una versión más pequeña?",
		English:    "That file is too large to process. Could you send a smaller version?",
		Portuguese: "O arquivo é grande demais para processar. Pode enviar uma versão menor?",
	},
	KeyErrRateLimited: {
		Spanish:    "Estás enviando mensajes muy rápido. Espera un momento, por favor.",
		English:    "You’re sending messages too quickly. Please wait a moment.",
		Portuguese: "Você está enviando mensagens rápido demais. Aguarde um momento, por favor.",
	},
	KeyErrUnsupported: {
		Spanish:    "Recibí tu mensaje, pero aún no puedo procesar ese tipo de contenido.",
		English:    "I got your message, but I can’t process that kind of content yet.",
		Portuguese: "Recebi sua mensagem, mas ainda não consigo processar esse tipo de conteúdo.",
	},
}

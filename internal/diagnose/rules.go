package diagnose

// rule maps a set of lowercase substrings to a fixed diagnosis. A rule
// matches when any of its signatures occurs in the search text.
type rule struct {
	name       string
	signatures []string
	result     Diagnosis
}

// rules is evaluated top-down and the first match wins. Signatures overlap
// (a failed fetch can carry "500"), so the order here decides the outcome.
var rules = []rule{
	{
		name:       "connectivity",
		signatures: []string{"1006", "connection refused", "failed to connect"},
		result: Diagnosis{
			Title:       "فشل الاتصال بالخادم",
			Explanation: "التطبيق غير قادر على الاتصال بالخادم الخلفي (Backend).",
			Cause:       "قد يكون الخادم متوقفاً عن العمل، أو هناك برنامج حماية (Firewall) يمنع الاتصال، أو أن المنفذ 8765 مشغول.",
			Impact:      "لن تعمل الأوامر الصوتية، المحادثة، أو تحديث البيانات.",
			Steps: []string{
				"تأكد من تشغيل التطبيق كمسؤول (Admin) إذا لزم الأمر.",
				"تحقق من عدم وجود تطبيق آخر يستخدم المنفذ 8765.",
				"أعد تشغيل التطبيق بالكامل.",
				"إذا استمرت المشكلة، تحقق من ملفات السجل (Backend Logs) لمزيد من التفاصيل.",
			},
		},
	},
	{
		name:       "network",
		signatures: []string{"fetch", "network request failed"},
		result: Diagnosis{
			Title:       "خطأ في الشبكة",
			Explanation: "فشل التطبيق في جلب البيانات من الخادم.",
			Cause:       "الخادم لا يستجيب للطلبات، أو هناك انقطاع في الاتصال المحلي.",
			Impact:      "لن تظهر البيانات المحدثة (البريد، التقويم، المهام).",
			Steps: []string{
				"تأكد من أن الخادم يعمل (انظر حالة النظام).",
				"تحقق من اتصال الإنترنت (للخدمات الخارجية).",
				"حاول تحديث الصفحة.",
			},
		},
	},
	{
		name:       "server-fault",
		signatures: []string{"500", "internal server error"},
		result: Diagnosis{
			Title:       "خطأ داخلي في الخادم",
			Explanation: "حدثت مشكلة غير متوقعة داخل الخادم أثناء معالجة الطلب.",
			Cause:       "قد يكون هناك خطأ برمجي في الكود الخلفي، أو بيانات غير صالحة تم إرسالها.",
			Impact:      "العملية الحالية لم تكتمل.",
			Steps: []string{
				"حاول تكرار العملية مرة أخرى.",
				"راجع سجلات الخادم (Backend Logs) لمعرفة الخطأ البرمجي الدقيق.",
				"أبلغ المطور عن المشكلة مع إرفاق السجلات.",
			},
		},
	},
	{
		name:       "microphone",
		signatures: []string{"microphone", "audio", "notallowederror"},
		result: Diagnosis{
			Title:       "مشكلة في الميكروفون",
			Explanation: "التطبيق لا يستطيع الوصول إلى الميكروفون.",
			Cause:       "لم يتم منح الصلاحية، أو الميكروفون غير متصل، أو مستخدم من قبل تطبيق آخر.",
			Impact:      "لن تعمل الأوامر الصوتية.",
			Steps: []string{
				"تأكد من منح صلاحية الميكروفون للتطبيق في إعدادات النظام.",
				"تأكد من أن الميكروفون متصل ويعمل.",
				"أغلق التطبيقات الأخرى التي قد تستخدم الميكروفون.",
			},
		},
	},
}

var fallback = Diagnosis{
	Title:       "خطأ غير محدد",
	Explanation: "حدث خطأ لم يتم التعرف على سببه بدقة من خلال التحليل التلقائي.",
	Cause:       "غير معروف.",
	Impact:      "قد يؤثر على وظائف معينة حسب سياق الخطأ.",
	Steps: []string{
		"اقرأ رسالة الخطأ الأصلية بعناية.",
		"حاول إعادة تشغيل التطبيق.",
		"تواصل مع الدعم الفني.",
	},
}

// FallbackName is the rule name reported when no signature matches.
const FallbackName = "unknown"
